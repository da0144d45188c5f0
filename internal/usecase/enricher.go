package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mflix/internal/domain/entity"
	"mflix/internal/domain/repository"
	"mflix/internal/domain/title"
)

const notAvailable = "N/A"

// Enricher turns raw recommendation titles into displayable records. It
// never returns an error: every failure degrades to entity.FallbackMovie.
type Enricher struct {
	lookup repository.MetadataLookup
	log    *slog.Logger
}

var _ repository.MovieEnricher = (*Enricher)(nil)

func NewEnricher(lookup repository.MetadataLookup, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{lookup: lookup, log: logger}
}

// Enabled reports whether metadata lookups will be attempted.
func (e *Enricher) Enabled() bool {
	return e.lookup != nil && e.lookup.IsConfigured()
}

// Enrich returns the best record available for rawTitle.
func (e *Enricher) Enrich(ctx context.Context, rawTitle string) entity.EnrichedMovie {
	return e.Lookup(ctx, rawTitle).Movie
}

// Lookup is Enrich with the outcome kept, so callers can tell a degraded
// record from real metadata.
func (e *Enricher) Lookup(ctx context.Context, rawTitle string) entity.Enrichment {
	if !e.Enabled() {
		return entity.Enrichment{Movie: entity.FallbackMovie(rawTitle), Status: entity.EnrichDegraded}
	}

	q := title.Parse(rawTitle)
	meta, err := e.lookup.Lookup(ctx, q)
	if err != nil {
		e.log.WarnContext(ctx, "enrich.lookup_failed", "raw_title", rawTitle, "error", err)
		return entity.Enrichment{Movie: entity.FallbackMovie(rawTitle), Status: entity.EnrichFailed, Err: err}
	}
	if meta == nil || meta.Response == "False" {
		reason := entity.ErrNotFound
		if meta != nil && meta.Error != "" {
			reason = fmt.Errorf("%w: %s", entity.ErrNotFound, meta.Error)
		}
		e.log.InfoContext(ctx, "enrich.not_found", "raw_title", rawTitle, "query", q.QueryTitle, "year", q.Year)
		return entity.Enrichment{Movie: entity.FallbackMovie(rawTitle), Status: entity.EnrichNotFound, Err: reason}
	}

	movie := entity.EnrichedMovie{
		ID:     rawTitle,
		Title:  available(meta.Title),
		Year:   available(meta.Year),
		Poster: available(meta.Poster),
		Rating: available(meta.ImdbRating),
		Plot:   available(meta.Plot),
	}
	if movie.Title == "" {
		movie.Title = rawTitle
	}
	return entity.Enrichment{Movie: movie, Status: entity.EnrichFound}
}

// available maps the provider's "N/A" sentinel to empty.
func available(v string) string {
	if strings.TrimSpace(v) == notAvailable {
		return ""
	}
	return v
}
