package entity

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RecommendationRequest is the body sent to the recommendation backend.
type RecommendationRequest struct {
	Title string `json:"title"`
	TopK  int    `json:"top_k"`
}

// RecommendationResult is the normalized backend answer. Order of
// Recommendations is significant.
type RecommendationResult struct {
	BaseTitle       string   `json:"title"`
	Recommendations []string `json:"recommendations"`
}

// EnrichedMovie is one recommendation augmented with OMDb metadata.
// Optional fields are empty when unknown, never "N/A".
type EnrichedMovie struct {
	ID     string `json:"id"` // the raw title
	Title  string `json:"title"`
	Year   string `json:"year"`
	Poster string `json:"poster"`
	Rating string `json:"rating"`
	Plot   string `json:"plot"`
}

// FallbackMovie returns the record used whenever metadata is unavailable.
func FallbackMovie(rawTitle string) EnrichedMovie {
	return EnrichedMovie{ID: rawTitle, Title: rawTitle}
}

type EnrichStatus string

const (
	EnrichFound    EnrichStatus = "found"
	EnrichDegraded EnrichStatus = "degraded" // lookup disabled, no API key
	EnrichNotFound EnrichStatus = "not_found"
	EnrichFailed   EnrichStatus = "failed"
)

// Enrichment is the typed outcome of a single metadata lookup. Err is set
// only for EnrichFailed and EnrichNotFound.
type Enrichment struct {
	Movie  EnrichedMovie `json:"movie"`
	Status EnrichStatus  `json:"status"`
	Err    error         `json:"-"`
}

// Fallback reports whether Movie is the fallback record.
func (e Enrichment) Fallback() bool {
	return e.Status != EnrichFound
}

// RawTopK carries the user's result-count input as typed, before coercion.
// It accepts JSON numbers, strings and null.
type RawTopK string

func (r *RawTopK) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*r = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*r = RawTopK(str)
		return nil
	}
	*r = RawTopK(s)
	return nil
}

// maxTopK is the largest count accepted; anything above it is treated like
// any other unusable input.
const maxTopK = math.MaxInt32

// CoerceTopK converts the raw input to a positive count. Non-numeric input,
// zero, negative values and values above maxTopK all yield 1. Fractions are
// truncated.
func (r RawTopK) CoerceTopK() int {
	s := strings.TrimSpace(string(r))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return boundedOrOne(float64(n))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 1
	}
	return boundedOrOne(math.Trunc(f))
}

func boundedOrOne(n float64) int {
	if n <= 0 || n > maxTopK {
		return 1
	}
	return int(n)
}

// SubmissionInput is what a user submits from a form or CLI.
type SubmissionInput struct {
	Title   string  `json:"title"`
	TopK    RawTopK `json:"top_k"`
	Session string  `json:"-"`
}

// MovieMetadata is the subset of the OMDb title response the enricher uses.
// Response is "False" when the title was not found.
type MovieMetadata struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Poster     string `json:"Poster"`
	ImdbRating string `json:"imdbRating"`
	Plot       string `json:"Plot"`
}
