package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/config"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/dto"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/identity"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService  *services.AuthService
	cookieName   string
	cookieMaxAge time.Duration
	secure       bool
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieName:   cfg.RefreshCookieName,
		cookieMaxAge: cfg.RefreshCookieMaxAge,
		secure:       cfg.IsProduction(),
	}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}

	pair, err := h.authService.Signup(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.Status(fiber.StatusCreated).JSON(dto.TokenResponse{AccessToken: pair.AccessToken})
}

func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}

	pair, err := h.authService.Signin(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(dto.TokenResponse{AccessToken: pair.AccessToken})
}

// NewToken rotates the refresh cookie. It sits outside the authentication
// gate so an expired access token can still be replaced.
func (h *AuthHandler) NewToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies(h.cookieName)
	if refreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Refresh token is required"})
	}

	pair, err := h.authService.Refresh(c.UserContext(), refreshToken)
	if err != nil {
		return respondError(c, err)
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(dto.TokenResponse{AccessToken: pair.AccessToken})
}

func (h *AuthHandler) Info(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Access token is required"})
	}
	return c.JSON(dto.InfoResponse{ID: userID})
}

// Logout revokes only the refresh token of the current request.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), identity.GetRefreshToken(c)); err != nil {
		return respondError(c, err)
	}

	h.clearRefreshCookie(c)
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieMaxAge.Seconds()),
		Secure:   h.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   h.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
