package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"reelog/internal/api"
	"reelog/internal/collection"
	"reelog/internal/config"
	"reelog/internal/models"
	"reelog/internal/services/tmdb"
	"reelog/internal/storage"
	"reelog/internal/suggest"
	"reelog/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting reelog")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Open the key/value store
	kv, err := storage.NewBoltKV(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer kv.Close()
	logger.Info("Storage opened")

	// 4. Load the tracked collection
	store := collection.NewStore(kv, logger)
	store.Subscribe(func(items []models.MediaItem) {
		logger.WithField("items", len(items)).Debug("Collection updated")
	})

	// 5. Initialize services
	metadataClient := tmdb.NewClient(cfg, logger)
	logger.Info("TMDB client initialized")

	engine := suggest.NewEngine(store, kv, nil, nil, logger)

	// 6. Initialize HTTP server
	server := api.NewServer(cfg, store, engine, metadataClient, logger)

	// Start server in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 7. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("reelog is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("reelog stopped")
	return nil
}
