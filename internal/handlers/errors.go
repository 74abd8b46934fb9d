package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/dto"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/services"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/validation"
	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors onto status codes and the {error} body.
// Anything unrecognised is logged and answered with a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	status, message := classify(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", requestID(c),
			"error", err.Error(),
		)
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: message})
}

func classify(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		if fe.Code >= fiber.StatusInternalServerError {
			return fe.Code, "Internal server error"
		}
		return fe.Code, fe.Message

	case errors.Is(err, validation.ErrIdentifierRequired),
		errors.Is(err, validation.ErrInvalidIdentifier),
		errors.Is(err, validation.ErrPasswordTooShort),
		errors.Is(err, validation.ErrPasswordTooLong):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrUserExists):
		return fiber.StatusBadRequest, "User already exists"
	case errors.Is(err, services.ErrNoFileUploaded):
		return fiber.StatusBadRequest, "No file uploaded"
	case errors.Is(err, services.ErrFileTooLarge):
		return fiber.StatusBadRequest, "File too large"

	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, services.ErrInvalidRefreshToken):
		return fiber.StatusUnauthorized, "Invalid refresh token"
	case errors.Is(err, services.ErrSessionRevoked):
		return fiber.StatusUnauthorized, "Token is no longer valid"
	case errors.Is(err, services.ErrExpiredAccessToken):
		return fiber.StatusUnauthorized, "Token expired"
	case errors.Is(err, services.ErrInvalidAccessToken):
		return fiber.StatusForbidden, "Invalid token"

	case errors.Is(err, services.ErrFileNotFound):
		return fiber.StatusNotFound, "File not found"
	}
	return fiber.StatusInternalServerError, "Internal server error"
}

// ErrorHandler renders errors that escape handlers and middleware, including
// Fiber's own 404 and 405 errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return respondError(c, err)
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
