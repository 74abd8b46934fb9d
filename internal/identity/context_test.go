package identity

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindAndGet(t *testing.T) {
	app := fiber.New()
	app.Get("/bound", func(c *fiber.Ctx) error {
		Bind(c, "a@b.com", "refresh")
		id, err := GetUserID(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": id, "refresh": GetRefreshToken(c)})
	})
	app.Get("/unbound", func(c *fiber.Ctx) error {
		_, err := GetUserID(c)
		assert.ErrorIs(t, err, ErrNoIdentity)
		assert.Empty(t, GetRefreshToken(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/bound", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/unbound", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
