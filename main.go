package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"backlog/internal/auth"
	"backlog/internal/config"
	"backlog/internal/handlers"
	"backlog/internal/ranking"
	"backlog/internal/services"
	"backlog/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "backlog",
		Short:         "Feature request tracker with per-client priority ranking",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(cmd.Context(), serve)
		},
	}
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(cmd.Context(), migrate)
		},
	}
	root.AddCommand(serveCmd, migrateCmd)

	// Running the binary bare starts the server.
	root.RunE = serveCmd.RunE

	return root
}

// withConfig loads the configuration and logger, then opens the store for fn.
func withConfig(ctx context.Context, fn func(context.Context, *config.Configuration, *logrus.Logger, *store.SQLStore) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Configuration
	cfg, err := config.Load(config.DefaultEnvFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return err
	}
	logger := cfg.Logger()

	// Ensure data directory exists
	if cfg.Database.Driver == store.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
			logger.WithError(err).Error("failed to create data directory")
			return err
		}
	}

	// Initialize store
	s, err := store.New(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		logger.WithError(err).WithField("driver", cfg.Database.Driver).Error("failed to initialize store")
		return err
	}
	defer s.Close()

	if err := fn(ctx, cfg, logger, s); err != nil {
		logger.WithError(err).Error("command failed")
		return err
	}
	return nil
}

func migrate(ctx context.Context, cfg *config.Configuration, logger *logrus.Logger, s *store.SQLStore) error {
	applied, err := s.AppliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, m := range applied {
		logger.WithFields(logrus.Fields{
			"version":    m.Version,
			"name":       m.Name,
			"applied_at": m.AppliedAt.Format(time.RFC3339),
		}).Info("migration applied")
	}
	ranks, err := s.ListRanks(ctx)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"driver":    s.Driver(),
		"rank_pool": len(ranks),
	}).Infof("database is at version %d", len(applied))
	return nil
}

func serve(ctx context.Context, cfg *config.Configuration, logger *logrus.Logger, s *store.SQLStore) error {
	entry := logrus.NewEntry(logger)

	// Initialize services
	engine := ranking.NewEngine(s, entry)
	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	h := handlers.New(
		s,
		services.NewRequestService(s, engine, entry),
		services.NewClientService(s, entry),
		services.NewProductAreaService(s, entry),
		services.NewUserService(s, tokens, entry),
		logger,
	)

	// Create router
	router, err := h.Router(cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":   srv.Addr,
			"driver": s.Driver(),
			"auth":   cfg.Auth.Enabled,
		}).Info("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
