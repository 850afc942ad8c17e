package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/server"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/session"
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
)

const logFlushInterval = 5 * time.Second

// newRootCmd builds the dtt command tree. Running it without a subcommand
// starts the API server.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dtt",
		Short: "TikTok and Discord account linking API",
		Long: `dtt serves the account linking API: TikTok sign-in with PKCE,
Discord identity linking, cached TikTok profiles and per-user posting config.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logging.Setup(cfg.AppEnv)
			return runMigrate(cfg)
		},
	}
}

func runMigrate(cfg *config.Config) error {
	if err := database.Connect(cfg); err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		return err
	}
	slog.Info("migration complete")
	return nil
}

func runServe() error {
	cfg := config.Load()
	logging.Setup(cfg.AppEnv)

	if cfg.SessionSecret == "" {
		slog.Error("SESSION_SECRET environment variable is required")
		return errors.New("SESSION_SECRET is required")
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		return err
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		return err
	}

	// Database log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB, logFlushInterval)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.Default().Handler(),
		dbLogHandler,
	)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetention, cleanupDone)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	// Session storage
	var storage fiber.Storage
	if cfg.RedisURL != "" {
		redisStorage, err := session.NewRedisStorageFromURL(cfg.RedisURL)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			return err
		}
		defer redisStorage.Close()
		storage = redisStorage
		slog.Info("session storage", "backend", "redis")
	} else {
		slog.Warn("REDIS_URL not set, sessions are kept in memory")
	}

	app, err := server.New(server.Deps{
		Config:    cfg,
		DB:        database.DB,
		Storage:   storage,
		Ping:      database.Ping,
		AccessLog: true,
	})
	if err != nil {
		slog.Error("server setup failed", "error", err)
		return err
	}

	// Graceful shutdown
	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-listenErr:
		if err != nil {
			slog.Error("server failed to start", "error", err)
		}
		shutdown(cleanupDone, dbLogHandler)
		return err
	case <-quit:
	}

	slog.Info("shutting down server...")
	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	shutdown(cleanupDone, dbLogHandler)
	slog.Info("server stopped")
	return nil
}

func shutdown(cleanupDone chan struct{}, dbLogHandler *logging.DBHandler) {
	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}
}
