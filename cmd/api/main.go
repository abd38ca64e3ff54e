package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finwise/internal/api"
	"github.com/dvloznov/finwise/internal/app"
	"github.com/dvloznov/finwise/internal/config"
	"github.com/dvloznov/finwise/internal/jobs/inmemory"
	"github.com/dvloznov/finwise/internal/logger"
)

func main() {
	envFile := flag.String("env-file", ".env", "dotenv file to load before reading the environment")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.NewWithLevel(cfg.LogLevel)
	ctx := logger.WithContext(context.Background(), log)

	application, err := app.New(ctx, cfg, log, app.WithInsightsCache())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, cfg.ImportWorkers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	log.Info().Int("workers", cfg.ImportWorkers).Msg("Starting import workers")
	if err := jobQueue.Start(workerCtx, application.Importer.HandleJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to start import workers")
	}

	deps := api.Deps{
		Store:          application.Store,
		Classifier:     application.Classifier,
		Coach:          application.Coach,
		Importer:       application.Importer,
		Publisher:      jobQueue,
		JobStore:       jobStore,
		AllowedOrigins: cfg.AllowedOrigins(),
		Log:            log,
	}
	// A nil *InsightsCache must not become a non-nil interface.
	if application.Cache != nil {
		deps.Cache = application.Cache
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * cfg.AITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight imports finish before the store is closed.
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
