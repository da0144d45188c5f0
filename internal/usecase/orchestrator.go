package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"mflix/internal/domain/entity"
	"mflix/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
)

// StateObserver is told about every state a submission enters.
type StateObserver func(sub *entity.Submission, state entity.SubmissionState)

type Orchestrator struct {
	recommender    repository.Recommender
	enricher       repository.MovieEnricher
	tracker        repository.SubmissionTracker
	log            *slog.Logger
	maxConcurrency int
	observer       StateObserver
}

type OrchestratorOption func(*Orchestrator)

// WithMaxConcurrency bounds parallel metadata lookups. Zero or less means
// one goroutine per recommendation.
func WithMaxConcurrency(n int) OrchestratorOption {
	return func(o *Orchestrator) { o.maxConcurrency = n }
}

func WithTracker(t repository.SubmissionTracker) OrchestratorOption {
	return func(o *Orchestrator) { o.tracker = t }
}

func WithObserver(fn StateObserver) OrchestratorOption {
	return func(o *Orchestrator) { o.observer = fn }
}

func WithOrchestratorLogger(l *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

func NewOrchestrator(rec repository.Recommender, enr repository.MovieEnricher, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{recommender: rec, enricher: enr, log: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit runs one submission end to end. The returned Submission is never
// nil; on failure it is in StateError and the error is either
// *entity.ValidationError or *entity.BackendError.
func (u *Orchestrator) Submit(ctx context.Context, in entity.SubmissionInput) (*entity.Submission, error) {
	sub := &entity.Submission{
		ID:      uuid.NewString(),
		Session: in.Session,
		State:   entity.StateIdle,
	}
	log := u.log.With("submission_id", sub.ID)

	// Tokens are taken before validation so any newer submission, even a
	// rejected one, supersedes results still in flight.
	if u.tracker != nil && in.Session != "" {
		token, err := u.tracker.Next(ctx, in.Session)
		if err != nil {
			log.WarnContext(ctx, "submission.token_failed", "session", in.Session, "error", err)
		}
		sub.Token = token
	}

	// 1. Validate
	u.transition(ctx, log, sub, entity.StateValidating)
	sub.Title = strings.TrimSpace(in.Title)
	if sub.Title == "" {
		return u.fail(ctx, log, sub, &entity.ValidationError{Err: entity.ErrEmptyTitle})
	}
	sub.TopK = in.TopK.CoerceTopK()

	// 2. Fetch recommendations
	u.transition(ctx, log, sub, entity.StateFetchingRecommendations)
	res, err := u.recommender.Fetch(ctx, sub.Title, sub.TopK)
	if err == nil && res == nil {
		err = &entity.BackendError{Message: entity.ErrUnexpectedFormat.Error(), Err: entity.ErrUnexpectedFormat}
	}
	if err != nil {
		var be *entity.BackendError
		if !errors.As(err, &be) {
			be = &entity.BackendError{Message: err.Error(), Err: err}
		}
		return u.fail(ctx, log, sub, be)
	}
	sub.BaseTitle = res.BaseTitle
	if sub.BaseTitle == "" {
		sub.BaseTitle = sub.Title
	}

	// 3. Enrich in parallel, keeping backend order
	u.transition(ctx, log, sub, entity.StateEnrichingResults)
	sub.Movies = u.enrichAll(ctx, log, res.Recommendations)

	// 4. Done
	u.transition(ctx, log, sub, entity.StateDone)
	return sub, nil
}

func (u *Orchestrator) enrichAll(ctx context.Context, log *slog.Logger, titles []string) []entity.EnrichedMovie {
	movies := make([]entity.EnrichedMovie, len(titles))
	statuses := make([]entity.EnrichStatus, len(titles))
	if len(titles) == 0 {
		return movies
	}

	start := time.Now()
	p := pool.New()
	if u.maxConcurrency > 0 {
		p = p.WithMaxGoroutines(u.maxConcurrency)
	}
	for i, raw := range titles {
		p.Go(func() {
			res := u.enricher.Lookup(ctx, raw)
			movies[i] = res.Movie
			statuses[i] = res.Status
		})
	}
	p.Wait()

	counts := make(map[entity.EnrichStatus]int, 4)
	for _, s := range statuses {
		counts[s]++
	}
	log.InfoContext(ctx, "submission.enriched",
		"total", len(titles),
		"found", counts[entity.EnrichFound],
		"not_found", counts[entity.EnrichNotFound],
		"failed", counts[entity.EnrichFailed],
		"degraded", counts[entity.EnrichDegraded],
		"elapsed", time.Since(start),
	)
	return movies
}

func (u *Orchestrator) fail(ctx context.Context, log *slog.Logger, sub *entity.Submission, err error) (*entity.Submission, error) {
	sub.Movies = nil
	sub.BaseTitle = ""
	sub.Error = err.Error()
	log.WarnContext(ctx, "submission.failed", "state", sub.State, "error", err)
	u.transition(ctx, log, sub, entity.StateError)
	return sub, err
}

func (u *Orchestrator) transition(ctx context.Context, log *slog.Logger, sub *entity.Submission, next entity.SubmissionState) {
	log.DebugContext(ctx, "submission.state", "from", sub.State, "to", next)
	sub.State = next
	if u.observer != nil {
		u.observer(sub, next)
	}
}

// IsLatest reports whether sub is still the newest submission of its
// session. Without a tracker, or when no token could be issued (Token is
// zero), every submission is considered latest.
func (u *Orchestrator) IsLatest(ctx context.Context, sub *entity.Submission) bool {
	if u.tracker == nil || sub.Session == "" || sub.Token == 0 {
		return true
	}
	latest, err := u.tracker.IsLatest(ctx, sub.Session, sub.Token)
	if err != nil {
		u.log.WarnContext(ctx, "submission.latest_check_failed", "submission_id", sub.ID, "error", err)
		return true
	}
	return latest
}
