package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/auth"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/dto"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/identity"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const tokenContextKey = "access_token"

// Authenticate requires a bearer access token and the refresh cookie of a
// live session. On success the user id and refresh token are bound to the
// request.
func Authenticate(tokens *services.TokenService, cookieName string) fiber.Handler {
	verify := jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{
			JWTAlg: jwtware.HS256,
			Key:    tokens.AccessSigner().Key(),
		},
		Claims:     &auth.Claims{},
		ContextKey: tokenContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(auth.Classify(err), auth.ErrTokenExpired) {
				return deny(c, fiber.StatusUnauthorized, "Token expired")
			}
			return deny(c, fiber.StatusForbidden, "Invalid token")
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals(tokenContextKey).(*jwt.Token)
			if !ok {
				return deny(c, fiber.StatusForbidden, "Invalid token")
			}
			// VerifyAccess also requires an expiry claim.
			userID, err := tokens.VerifyAccess(token.Raw)
			if err != nil {
				if errors.Is(err, services.ErrExpiredAccessToken) {
					return deny(c, fiber.StatusUnauthorized, "Token expired")
				}
				return deny(c, fiber.StatusForbidden, "Invalid token")
			}

			refreshToken := c.Cookies(cookieName)
			if err := tokens.ConfirmSession(c.UserContext(), userID, refreshToken); err != nil {
				if errors.Is(err, services.ErrSessionRevoked) {
					return deny(c, fiber.StatusUnauthorized, "Token is no longer valid")
				}
				slog.Error("session lookup failed", "user_id", userID, "error", err)
				return err
			}

			identity.Bind(c, userID, refreshToken)
			return c.Next()
		},
	})

	return func(c *fiber.Ctx) error {
		if bearerToken(c) == "" {
			return deny(c, fiber.StatusUnauthorized, "Access token is required")
		}
		if c.Cookies(cookieName) == "" {
			return deny(c, fiber.StatusUnauthorized, "Refresh token is required")
		}
		return verify(c)
	}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func deny(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: message})
}
