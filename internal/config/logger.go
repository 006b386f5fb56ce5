package config

import (
	"io"
	"log/slog"
	"os"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

func NewLogger(env string) *slog.Logger {
	return NewLoggerTo(env, os.Stdout)
}

// NewLoggerTo builds the service logger on w: JSON at info level in
// production, text at debug level elsewhere. The CLI passes stderr so stdout
// stays machine readable.
func NewLoggerTo(env string, w io.Writer) *slog.Logger {
	var h slog.Handler
	switch env {
	case EnvProduction:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		h = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: env == EnvDevelopment,
		})
	}
	return slog.New(h).With("service", "rollcall")
}
