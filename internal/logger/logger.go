package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	clog "github.com/charmbracelet/log"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration
type Config struct {
	Level  string    `mapstructure:"level"`  // "debug", "info", "warn", "error"
	Format string    `mapstructure:"format"` // "json", "text"
	Output io.Writer `mapstructure:"-"`
}

// New creates a new Logger instance
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	level := parseLevel(cfg.Level)

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(cfg.Output, &slog.HandlerOptions{Level: level})
	} else {
		handler = clog.NewWithOptions(cfg.Output, clog.Options{
			Level:           clog.Level(level),
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
		})
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// Discard returns a logger that drops everything; handy for tests and library callers.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
