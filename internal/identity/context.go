package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

const (
	localsUserID       = "user_id"
	localsRefreshToken = "refresh_token"
)

var ErrNoIdentity = errors.New("no authenticated identity in context")

// Bind stores the authenticated user and the refresh token of its session on
// the request.
func Bind(c *fiber.Ctx, userID, refreshToken string) {
	c.Locals(localsUserID, userID)
	c.Locals(localsRefreshToken, refreshToken)
}

// GetUserID extracts the authenticated user id from Fiber context locals.
func GetUserID(c *fiber.Ctx) (string, error) {
	if id, ok := c.Locals(localsUserID).(string); ok && id != "" {
		return id, nil
	}
	return "", ErrNoIdentity
}

// GetRefreshToken returns the refresh token the request was authenticated with.
func GetRefreshToken(c *fiber.Ctx) string {
	if tok, ok := c.Locals(localsRefreshToken).(string); ok {
		return tok
	}
	return ""
}
