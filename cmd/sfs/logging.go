package main

import (
	"io"
	"log/slog"

	"github.com/sagarc03/sfs/internal/logging"
)

// setupLogging installs the default logger on w. Results go to stdout, so
// logs never share that stream.
func setupLogging(w io.Writer, env, level string) {
	slog.SetDefault(slog.New(logging.NewHandler(w, logging.Options{
		Env:          env,
		Level:        level,
		DefaultLevel: slog.LevelWarn,
	})))
}
