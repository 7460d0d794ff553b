package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/innobridge/platform/internal/api"
	"github.com/innobridge/platform/internal/auth"
	"github.com/innobridge/platform/internal/cache"
	"github.com/innobridge/platform/internal/catalog"
	"github.com/innobridge/platform/internal/cleanup"
	"github.com/innobridge/platform/internal/config"
	"github.com/innobridge/platform/internal/events"
	"github.com/innobridge/platform/internal/storage"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting innobridge",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"driver", cfg.Database.Driver,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Initialize repository
	var repo storage.Repository
	if cfg.Database.Driver == "memory" {
		slog.Warn("using in-memory repository, data will not survive restarts")
		repo = storage.NewMemoryRepository()
	} else {
		slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
		if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		pgRepo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
			DSN:          cfg.Database.DSN,
			MaxOpenConns: int32(cfg.Database.MaxOpenConns),
			MaxIdleConns: int32(cfg.Database.MaxIdleConns),
		})
		if err != nil {
			slog.Error("failed to create database repository", "error", err)
			os.Exit(1)
		}
		repo = pgRepo
		slog.Info("database connected successfully")
	}
	defer repo.Close()

	// Domain catalog
	cat := catalog.New()
	if cfg.Catalog.File != "" {
		if err := cat.LoadFile(cfg.Catalog.File); err != nil {
			slog.Warn("failed to load catalog file, using defaults", "file", cfg.Catalog.File, "error", err)
		}
	}

	// Board cache (optional)
	var board *cache.BoardCache
	if cfg.Redis.Enabled {
		board, err = cache.NewBoardCache(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			slog.Warn("board cache unavailable, serving without it", "error", err)
			board = nil
		} else {
			defer board.Close()
			slog.Info("board cache connected", "address", cfg.Redis.Address)
		}
	}

	// Session tokens
	tokens := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)

	// Events hub
	hub := events.NewHub()

	// Create context with cancellation for background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Deadline sweeper
	if cfg.Cleanup.Enabled {
		cleaner := cleanup.NewCleaner(repo, board, cfg.Cleanup.Interval)
		cleaner.Start(ctx)
	}

	// Setup HTTP server
	server := api.NewServer(repo, tokens, cat, hub, board, cfg.Listing)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("innobridge stopped")
}
