// Package logging builds the slog handlers shared by the sfs binaries:
// colored tint output in development, JSON with RFC 3339 "ts" in production.
package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Options selects the handler built by NewHandler.
type Options struct {
	// Env is "prod"/"production" for JSON output; anything else is dev.
	Env string
	// Level is parsed with ParseLevel. Empty or unknown uses DefaultLevel.
	Level        string
	DefaultLevel slog.Level
	// AddSource annotates dev output with file:line.
	AddSource bool
}

// IsProd reports whether env names a production environment.
func IsProd(env string) bool {
	return env == "prod" || env == "production"
}

// ParseLevel maps a level name to a slog.Level, falling back for empty or
// unknown names.
func ParseLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}

// NewHandler returns the handler for opts writing to w.
func NewHandler(w io.Writer, opts Options) slog.Handler {
	level := ParseLevel(opts.Level, opts.DefaultLevel)

	if IsProd(opts.Env) {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: utcTimestamp,
		})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		AddSource:  opts.AddSource,
		TimeFormat: "15:04:05.000",
	})
}

func utcTimestamp(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339Nano))
	}
	return a
}
