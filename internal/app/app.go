// Package app builds the service object graph from configuration. Both the
// HTTP server and the CLI start from here.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finwise/internal/ai"
	"github.com/dvloznov/finwise/internal/cache"
	"github.com/dvloznov/finwise/internal/classify"
	"github.com/dvloznov/finwise/internal/coaching"
	"github.com/dvloznov/finwise/internal/config"
	"github.com/dvloznov/finwise/internal/gcsuploader"
	infraBQ "github.com/dvloznov/finwise/internal/infra/bigquery"
	"github.com/dvloznov/finwise/internal/infra/memory"
	"github.com/dvloznov/finwise/internal/infra/postgres"
	"github.com/dvloznov/finwise/internal/infra/sqlite"
	"github.com/dvloznov/finwise/internal/pipeline"
	"github.com/dvloznov/finwise/internal/repository"
)

// App holds the long-lived collaborators. Storage and Cache are nil when
// not configured.
type App struct {
	Config     *config.Config
	Store      repository.Store
	Classifier *classify.Classifier
	Coach      *coaching.Coach
	Importer   *pipeline.Importer
	Storage    *gcsuploader.GCSStorageService
	Cache      *cache.InsightsCache

	closers []func() error
}

// Option adjusts how New builds the App.
type Option func(*options)

type options struct {
	withCache bool
}

// WithInsightsCache enables the coaching result cache.
func WithInsightsCache() Option {
	return func(o *options) { o.withCache = true }
}

// New opens the configured store, AI provider and optional GCS client.
// Close releases them in reverse order.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg}

	store, recorder, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)

	rules := classify.NewRules()
	if cfg.RulesFile != "" {
		if rules, err = classify.LoadRules(cfg.RulesFile); err != nil {
			a.Close()
			return nil, err
		}
	}

	gen, err := ai.NewTextGenerator(ctx, ai.GeneratorConfig{
		Provider:        cfg.AIProvider,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		AnthropicModel:  cfg.AnthropicModel,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	var (
		remoteClassifier classify.RemoteClassifier
		remoteInsights   coaching.RemoteInsights
	)
	if gen != nil {
		backendOpts := []ai.Option{
			ai.WithTimeout(cfg.AITimeout),
			ai.WithCurrencySymbol(cfg.CurrencySymbol),
		}
		if recorder != nil {
			backendOpts = append(backendOpts, ai.WithRecorder(recorder))
		}
		backend := ai.NewPromptBackend(gen, backendOpts...)
		remoteClassifier = backend
		remoteInsights = backend
		log.Info().Str("provider", cfg.AIProvider).Str("model", gen.ModelName()).Msg("AI backend enabled")
	} else {
		log.Warn().Str("provider", cfg.AIProvider).Msg("No AI backend configured, using rule-based fallbacks only")
	}

	a.Classifier = classify.NewClassifier(remoteClassifier, rules)
	a.Coach = coaching.NewCoach(coaching.NewGenerator(remoteInsights, coaching.NewRuleEngine(cfg.CurrencySymbol)))

	importOpts := []pipeline.Option{pipeline.WithConcurrency(cfg.ImportConcurrency)}

	if cfg.GCSBucket != "" {
		storage, err := gcsuploader.NewGCSStorageService(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Storage = storage
		a.closers = append(a.closers, storage.Close)
		importOpts = append(importOpts, pipeline.WithStorage(storage, cfg.GCSBucket))
	} else {
		log.Warn().Msg("No GCS bucket configured, uploads will not be archived")
	}

	if o.withCache {
		insights, err := cache.NewInsightsCache(cfg.InsightsCacheTTL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Cache = insights
		a.closers = append(a.closers, func() error { insights.Close(); return nil })
		importOpts = append(importOpts, pipeline.WithInvalidator(insights))
	}

	a.Importer = pipeline.NewImporter(a.Classifier, a.Store, importOpts...)

	log.Info().Str("store", cfg.StoreDriver).Msg("Application initialized")
	return a, nil
}

// openStore returns the repository for cfg.StoreDriver. The recorder is
// non-nil only for stores that can keep model outputs.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, ai.OutputRecorder, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return memory.NewStore(), nil, nil
	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case config.StorePostgres:
		store, err := postgres.Open(ctx, postgres.Config{URL: cfg.DatabaseURL})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case config.StoreBigQuery:
		store, err := infraBQ.NewStore(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// Close releases everything New opened. It returns the first error.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
