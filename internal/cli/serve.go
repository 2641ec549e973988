package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/averline/taskwire/internal/config"
	"github.com/averline/taskwire/internal/httpapi"
	"github.com/averline/taskwire/internal/hub"
	"github.com/averline/taskwire/internal/logging"
	"github.com/averline/taskwire/internal/services/auth"
	"github.com/averline/taskwire/internal/services/comment"
	"github.com/averline/taskwire/internal/services/dashboard"
	"github.com/averline/taskwire/internal/services/project"
	"github.com/averline/taskwire/internal/services/task"
	"github.com/averline/taskwire/internal/store"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the taskwire server",
		Long: `Start the HTTP API and the websocket hub. The server runs until
SIGINT or SIGTERM, then drains in-flight requests and shuts down.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts.ConfigPath)
		},
	}
	return cmd
}

func runServe(configPath string) error {
	logging.Init()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.Server.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	if err := store.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	st := store.New(db)

	h := hub.New(hub.Options{
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		SendBuffer:      cfg.Socket.SendBuffer,
		BroadcastBuffer: cfg.Socket.BroadcastBuffer,
	})
	go h.Run(ctx)

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	srv := httpapi.NewServer(
		auth.NewService(st, auth.NewBcryptHasher(), tokens),
		project.NewService(st, h),
		task.NewService(st, h),
		comment.NewService(st, h),
		dashboard.NewService(st),
		h,
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	return nil
}
