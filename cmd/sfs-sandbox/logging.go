package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/sagarc03/sfs/config"
	"github.com/sagarc03/sfs/internal/logging"
)

// setupLogging logs to stdout at debug in dev and info in prod unless
// log.level says otherwise. The standard logger is routed through slog too,
// so net/http server errors share the format.
func setupLogging(cfg *config.Config) {
	defaultLevel := slog.LevelDebug
	if logging.IsProd(cfg.Env) {
		defaultLevel = slog.LevelInfo
	}

	h := logging.NewHandler(os.Stdout, logging.Options{
		Env:          cfg.Env,
		Level:        cfg.Log.Level,
		DefaultLevel: defaultLevel,
		AddSource:    true,
	})
	slog.SetDefault(slog.New(h))

	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(h, slog.LevelInfo).Writer())
}
