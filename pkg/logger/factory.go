package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format represents logger output format.
type Format string

const (
	// FormatJSON outputs structured logs for production log aggregation.
	FormatJSON Format = "json"
	// FormatText outputs human-readable logs for development.
	FormatText Format = "text"
)

// Config describes logger settings loaded from the environment.
type Config struct {
	Level   string `env:"LOG_LEVEL" envDefault:"info"`           // debug, info, warn, error
	Format  Format `env:"LOG_FORMAT" envDefault:"json"`          // json or text
	Service string `env:"LOG_SERVICE" envDefault:"billing-core"` // service name attached to every record
}

// New builds a slog.Logger from the config. Unknown levels or formats panic:
// logger misconfiguration should prevent startup, not degrade silently.
func New(cfg Config, out io.Writer) *slog.Logger {
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	switch cfg.Format {
	case FormatText:
		handler = slog.NewTextHandler(out, opts)
	case FormatJSON, "":
		handler = slog.NewJSONHandler(out, opts)
	default:
		panic(fmt.Errorf("invalid log format %q: must be %q or %q", cfg.Format, FormatJSON, FormatText))
	}

	log := slog.New(handler)
	if cfg.Service != "" {
		log = log.With(slog.String("service", cfg.Service))
	}
	return log
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Errorf("invalid log level %q", level))
	}
}
