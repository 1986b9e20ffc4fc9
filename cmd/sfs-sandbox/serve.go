package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sfs/config"
	"github.com/sagarc03/sfs/filesystem"
	"github.com/sagarc03/sfs/keybackend"
	"github.com/sagarc03/sfs/sandbox"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP server port (default: 5709, env: SFS_SANDBOX_SERVER_PORT)")
	serveCmd.Flags().String("auth-mode", "", "authentication: public or private (env: SFS_SANDBOX_AUTH_MODE)")
	serveCmd.Flags().String("users-file", "", "JSON users file for private mode (env: SFS_SANDBOX_AUTH_USERS_FILE)")
	serveCmd.Flags().Int64("max-upload-size", 0, "maximum upload size in bytes, 0 for no limit")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	if err = os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open storage root: %w", err)
	}
	defer func() { _ = root.Close() }()

	handlerConfig := sandbox.HandlerConfig{
		CORS:          cfg.CORS,
		MaxUploadSize: cfg.Server.MaxUploadSize,
	}

	if cfg.Auth.Private() {
		users, err := keybackend.NewUserStore(cfg.Auth.Users)
		if err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		if users.Len() == 0 {
			return fmt.Errorf("load users: %w", config.ErrNoUsers)
		}
		handlerConfig.Auth = users
		slog.Info("basic auth enabled", "users", users.Len())
	}

	handler := sandbox.NewHandler(&handlerConfig, filesystem.NewFileStorage(root))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr, "storage", cfg.Storage.Path, "auth", cfg.Auth.Mode)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
