package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mflix/internal/domain/entity"
	"mflix/internal/domain/repository"
)

// RecommendAPI calls the HTTP recommendation backend.
type RecommendAPI struct {
	endpoint   string
	httpClient *http.Client
	log        *slog.Logger
}

var _ repository.Recommender = (*RecommendAPI)(nil)

// Option configures an HTTP-backed client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	log        *slog.Logger
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewRecommendAPI creates a client posting to endpoint.
func NewRecommendAPI(endpoint string, opts ...Option) (*RecommendAPI, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("recommendation endpoint required")
	}
	o := applyOptions(opts)
	return &RecommendAPI{endpoint: endpoint, httpClient: o.httpClient, log: o.log}, nil
}

// Fetch asks the backend for topK titles similar to title. Any failure is
// returned as *entity.BackendError. There is exactly one attempt.
func (c *RecommendAPI) Fetch(ctx context.Context, title string, topK int) (*entity.RecommendationResult, error) {
	title = strings.TrimSpace(title)
	body, err := json.Marshal(entity.RecommendationRequest{Title: title, TopK: topK})
	if err != nil {
		return nil, &entity.BackendError{Message: "encode recommendation request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &entity.BackendError{Message: fmt.Sprintf("build request: %v", err), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		c.log.WarnContext(ctx, "recommend.request_failed", "latency", latency, "error", err)
		return nil, &entity.BackendError{
			Message: "Could not reach the recommendation API. Check if the API is running.",
			Err:     fmt.Errorf("execute request (latency=%v): %w", latency, err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.WarnContext(ctx, "recommend.bad_status", "status", resp.StatusCode, "latency", latency)
		return nil, entity.NewStatusError(resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &entity.BackendError{Message: entity.ErrUnexpectedFormat.Error(), Err: fmt.Errorf("read response: %w", err)}
	}
	result, err := decodeRecommendations(raw, title)
	if err != nil {
		c.log.WarnContext(ctx, "recommend.bad_payload", "latency", latency, "error", err)
		return nil, err
	}
	c.log.DebugContext(ctx, "recommend.fetched", "title", title, "count", len(result.Recommendations), "latency", latency)
	return result, nil
}

// decodeRecommendations validates the backend payload shape: an object
// holding a string array under "recommendations" and optionally "title".
func decodeRecommendations(raw []byte, submitted string) (*entity.RecommendationResult, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return nil, &entity.BackendError{Message: entity.ErrUnexpectedFormat.Error(), Err: entity.ErrUnexpectedFormat}
	}
	recs, ok := payload["recommendations"]
	if !ok {
		return nil, &entity.BackendError{Message: entity.ErrUnexpectedFormat.Error(), Err: entity.ErrUnexpectedFormat}
	}
	var list []string
	if err := json.Unmarshal(recs, &list); err != nil || list == nil {
		return nil, &entity.BackendError{Message: entity.ErrUnexpectedFormat.Error(), Err: entity.ErrUnexpectedFormat}
	}

	base := submitted
	if t, ok := payload["title"]; ok {
		var echoed string
		if json.Unmarshal(t, &echoed) == nil && echoed != "" {
			base = echoed
		}
	}
	return &entity.RecommendationResult{BaseTitle: base, Recommendations: list}, nil
}
