package repository

import (
	"context"

	"mflix/internal/domain/entity"
	"mflix/internal/domain/title"
)

// Recommender returns titles similar to the given one. Failures are
// *entity.BackendError.
type Recommender interface {
	Fetch(ctx context.Context, title string, topK int) (*entity.RecommendationResult, error)
}

// MetadataLookup queries the secondary metadata provider.
type MetadataLookup interface {
	IsConfigured() bool
	Lookup(ctx context.Context, q title.Parsed) (*entity.MovieMetadata, error)
}

// MovieEnricher resolves a raw title to a displayable record. It never fails.
type MovieEnricher interface {
	Lookup(ctx context.Context, rawTitle string) entity.Enrichment
}

// SubmissionTracker hands out per-session submission tokens so stale
// results can be told apart from the latest one.
type SubmissionTracker interface {
	Next(ctx context.Context, session string) (int64, error)
	IsLatest(ctx context.Context, session string, token int64) (bool, error)
}
