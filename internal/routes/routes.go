package routes

import (
	"github.com/ahmetcoskunkizilkaya/filevault/internal/handlers"
	"github.com/gofiber/fiber/v2"
)

// Setup mounts every route at the root. gate guards the routes that need a
// signed-in user; signup, signin, token rotation and health stay public.
func Setup(
	app *fiber.App,
	authHandler *handlers.AuthHandler,
	fileHandler *handlers.FileHandler,
	healthHandler *handlers.HealthHandler,
	gate fiber.Handler,
) {
	app.Get("/health", healthHandler.Check)

	// Auth: public
	app.Post("/signup", authHandler.Signup)
	app.Post("/signin", authHandler.Signin)
	app.Get("/signin/new_token", authHandler.NewToken)

	// Auth: protected
	app.Get("/info", gate, authHandler.Info)
	app.Get("/logout", gate, authHandler.Logout)

	files := app.Group("/file", gate)
	files.Post("/upload", fileHandler.Upload)
	files.Get("/list", fileHandler.List)
	files.Get("/download/:id", fileHandler.Download)
	files.Put("/update/:id", fileHandler.Update)
	files.Delete("/delete/:id", fileHandler.Delete)
	files.Get("/:id", fileHandler.Get)
}
