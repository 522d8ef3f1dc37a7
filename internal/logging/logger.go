// Package logging configures slog: JSON to stdout, plus an optional database
// sink that keeps ERROR records in system_logs.
package logging

import (
	"log/slog"
	"os"

	"gorm.io/gorm"
)

// Setup initializes the global slog logger with JSON output to stdout.
// Development environments log at DEBUG.
func Setup(appEnv string) {
	slog.SetDefault(slog.New(stdoutHandler(appEnv)))
}

// WithDatabase adds a DBHandler next to stdout and returns it so the caller
// can Stop it on shutdown.
func WithDatabase(appEnv string, db *gorm.DB) *DBHandler {
	dbHandler := NewDBHandler(db)
	slog.SetDefault(slog.New(NewMultiHandler(stdoutHandler(appEnv), dbHandler)))
	return dbHandler
}

func stdoutHandler(appEnv string) slog.Handler {
	level := slog.LevelInfo
	if appEnv == "development" {
		level = slog.LevelDebug
	}
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
}
