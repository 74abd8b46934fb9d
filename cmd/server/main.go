package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/auth"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/config"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/database"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/logging"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/routes"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/services"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/storage"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (stdout until the database sink is attached)
	stdout := logging.Setup(cfg.IsProduction())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Sentry error tracking
	sentryEnabled := false
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			sentryEnabled = true
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// ERROR+ logs are also batched into system_logs
	dbLogHandler := logging.Attach(stdout, db, sentryEnabled)

	bgDone := make(chan struct{})
	logging.StartCleanup(db, cfg.LogRetention, bgDone)

	// Blob storage
	store, err := storage.New(context.Background(), cfg)
	if err != nil {
		slog.Error("storage init failed", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}

	// Services
	tokenService := services.NewTokenService(db,
		auth.NewSigner(cfg.JWTSecret, cfg.JWTAccessExpiry),
		auth.NewSigner(cfg.JWTRefreshSecret, cfg.JWTRefreshExpiry),
	)
	authService := services.NewAuthService(db, tokenService, cfg.BcryptCost)
	fileService := services.NewFileService(db, store, cfg.MaxUploadSize)
	fileService.StartOrphanSweep(cfg.OrphanSweepInterval, cfg.OrphanSweepGrace, bgDone)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg)
	fileHandler := handlers.NewFileHandler(fileService)
	healthHandler := handlers.NewHealthHandler(db)

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    int(cfg.MaxUploadSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	// Routes
	routes.Setup(app, authHandler, fileHandler, healthHandler,
		middleware.Authenticate(tokenService, cfg.RefreshCookieName))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(bgDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}
