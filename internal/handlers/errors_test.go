package handlers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/services"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{validation.ErrInvalidIdentifier, fiber.StatusBadRequest, "ID must be a valid email or phone number"},
		{services.ErrUserExists, fiber.StatusBadRequest, "User already exists"},
		{services.ErrNoFileUploaded, fiber.StatusBadRequest, "No file uploaded"},
		{services.ErrInvalidCredentials, fiber.StatusUnauthorized, "Invalid credentials"},
		{services.ErrInvalidRefreshToken, fiber.StatusUnauthorized, "Invalid refresh token"},
		{services.ErrExpiredAccessToken, fiber.StatusUnauthorized, "Token expired"},
		{services.ErrInvalidAccessToken, fiber.StatusForbidden, "Invalid token"},
		{fmt.Errorf("lookup: %w", services.ErrFileNotFound), fiber.StatusNotFound, "File not found"},
		{fiber.NewError(fiber.StatusMethodNotAllowed, "Method Not Allowed"), fiber.StatusMethodNotAllowed, "Method Not Allowed"},
		{fiber.NewError(fiber.StatusBadGateway, "upstream said no"), fiber.StatusBadGateway, "Internal server error"},
		{errors.New("connection refused"), fiber.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		status, message := classify(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.message, message, tt.err.Error())
	}
}
