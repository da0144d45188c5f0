// Package bootstrap wires the adapters and use cases from a Config.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"mflix/internal/adapter/client"
	"mflix/internal/adapter/store"
	"mflix/internal/config"
	"mflix/internal/domain/repository"
	"mflix/internal/usecase"

	"github.com/redis/go-redis/v9"
)

type Components struct {
	Recommender  repository.Recommender
	Enricher     *usecase.Enricher
	Tracker      repository.SubmissionTracker
	Orchestrator *usecase.Orchestrator

	closers []func() error
}

// Close releases connections opened by Build.
func (c *Components) Close() error {
	var first error
	for _, fn := range c.closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	comps := &Components{}
	httpClient := &http.Client{Timeout: cfg.Recommend.HTTPTimeout}
	opts := []client.Option{client.WithHTTPClient(httpClient), client.WithLogger(logger)}

	switch cfg.Recommend.Backend {
	case config.BackendGemini:
		genaiClient, err := client.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Project, cfg.Gemini.Location)
		if err != nil {
			return nil, fmt.Errorf("init genai client: %w", err)
		}
		comps.Recommender = client.NewGeminiRecommender(genaiClient, cfg.Gemini.Model, logger)
	default:
		rec, err := client.NewRecommendAPI(cfg.Recommend.URL, opts...)
		if err != nil {
			return nil, err
		}
		comps.Recommender = rec
	}

	omdb := client.NewOMDbClient(cfg.OMDb.APIKey, cfg.OMDb.BaseURL, opts...)
	if !omdb.IsConfigured() {
		logger.Warn("OMDb API key is not set. Posters and extra info will not be shown.")
	}
	comps.Enricher = usecase.NewEnricher(omdb, logger)

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect to redis %s: %w", cfg.Redis.Addr, err)
		}
		comps.Tracker = store.NewRedisTracker(rdb, cfg.Redis.SubmissionTTL)
		comps.closers = append(comps.closers, rdb.Close)
	} else {
		comps.Tracker = store.NewMemoryTracker(cfg.Redis.SubmissionTTL)
	}

	comps.Orchestrator = usecase.NewOrchestrator(comps.Recommender, comps.Enricher,
		usecase.WithTracker(comps.Tracker),
		usecase.WithMaxConcurrency(cfg.Enrich.MaxConcurrency),
		usecase.WithOrchestratorLogger(logger),
	)
	return comps, nil
}
