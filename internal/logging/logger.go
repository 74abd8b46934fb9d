package logging

import (
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	"gorm.io/gorm"
)

// Setup installs the stdout logger: JSON at info level in production, text
// at debug level otherwise. The returned handler is reused by Attach.
func Setup(production bool) slog.Handler {
	var handler slog.Handler
	if production {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))
	return handler
}

// Attach fans the default logger out to stdout, the system_logs table and,
// when enabled, Sentry. The caller stops the returned DBHandler on shutdown.
func Attach(stdout slog.Handler, db *gorm.DB, sentryEnabled bool) *DBHandler {
	dbHandler := NewDBHandler(db)

	handlers := []slog.Handler{stdout, dbHandler}
	if sentryEnabled {
		handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))
	return dbHandler
}
