// Package logging builds the server's loggers. Services log through slog;
// HTTP handlers use a zerolog logger sharing the same level and output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options selects level and format. Format is "json" or "text".
type Options struct {
	Level   string
	Format  string
	Service string
	Output  io.Writer
}

// New returns the slog and zerolog loggers for opts
func New(opts Options) (*slog.Logger, zerolog.Logger) {
	w := opts.Output
	if w == nil {
		w = os.Stdout
	}
	service := opts.Service
	if service == "" {
		service = "wschedd"
	}

	zl := zerologLevel(opts.Level)
	zerolog.TimeFieldFormat = time.RFC3339

	var zw io.Writer = w
	var handler slog.Handler
	hopts := &slog.HandlerOptions{Level: slogLevel(opts.Level)}
	if strings.EqualFold(opts.Format, "text") {
		zw = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
		handler = slog.NewTextHandler(w, hopts)
	} else {
		handler = slog.NewJSONHandler(w, hopts)
	}

	zlogger := zerolog.New(zw).Level(zl).With().
		Timestamp().
		Str("service", service).
		Logger()
	return slog.New(handler).With("service", service), zlogger
}

// WithComponent returns a child logger annotated with a component name
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

func zerologLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal", "panic":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
