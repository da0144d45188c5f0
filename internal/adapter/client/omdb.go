package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mflix/internal/domain/entity"
	"mflix/internal/domain/repository"
	"mflix/internal/domain/title"
)

const DefaultOMDbBaseURL = "https://www.omdbapi.com/"

// OMDbClient looks up title metadata on OMDb. A client without an API key
// is valid but unconfigured.
type OMDbClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

var _ repository.MetadataLookup = (*OMDbClient)(nil)

func NewOMDbClient(apiKey, baseURL string, opts ...Option) *OMDbClient {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultOMDbBaseURL
	}
	o := applyOptions(opts)
	return &OMDbClient{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    baseURL,
		httpClient: o.httpClient,
		log:        o.log,
	}
}

func (c *OMDbClient) IsConfigured() bool {
	return c != nil && c.apiKey != ""
}

// Lookup fetches metadata for q. The year parameter is only sent when q
// carries one. A "Response":"False" payload is returned as-is, not as an error.
func (c *OMDbClient) Lookup(ctx context.Context, q title.Parsed) (*entity.MovieMetadata, error) {
	if !c.IsConfigured() {
		return nil, entity.ErrLookupDisabled
	}
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	params := url.Values{}
	params.Set("t", q.QueryTitle)
	if q.HasYear() {
		params.Set("y", q.Year)
	}
	params.Set("apikey", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb lookup returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload entity.MovieMetadata
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode omdb response: %w", err)
	}
	c.log.DebugContext(ctx, "omdb.lookup", "title", q.QueryTitle, "year", q.Year, "response", payload.Response, "latency", latency)
	return &payload, nil
}
