package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcbagz/edSIS/internal/bootstrap"
	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/db"
	"github.com/mcbagz/edSIS/internal/logger"
	"github.com/mcbagz/edSIS/internal/pipeline"
	"github.com/mcbagz/edSIS/internal/queue"
	"github.com/mcbagz/edSIS/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logCloser, err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
	if err != nil {
		panic(fmt.Sprintf("Failed to open log file: %v", err))
	}
	defer logCloser.Close()
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting sync worker")

	// Runs triggered through the API are tracked in the ledger
	var rec pipeline.Recorder
	if cfg.Database.Enabled {
		database, err := db.NewConnection(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer database.Close()

		if err := db.Migrate(context.Background(), database); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
		rec = db.NewRecorder(db.NewRepository(database))
	}

	// Initialize Redis client
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Create sync worker
	consumer := queue.NewConsumer(redisClient, cfg)
	syncWorker := worker.NewSyncWorker(consumer, bootstrap.RunnerFactory(cfg, rec))

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker
	go func() {
		if err := syncWorker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Msg("Sync worker failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down sync worker...")

	// Cancel context to stop worker
	cancel()
	syncWorker.Stop()

	log.Info().Msg("Sync worker exited")
}
