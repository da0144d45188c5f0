package client

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mflix/internal/domain/entity"
	"mflix/internal/domain/repository"

	"google.golang.org/genai"
)

const recommendInstruction = `You are a movie recommendation engine.
Return ONLY a JSON object of the form {"title": "<canonical title of the query movie>", "recommendations": ["<Title> (<YYYY>)", ...]}.
List exactly %d movies similar to the query movie, most similar first, each with its release year in parentheses.
Do not include the query movie itself. Do not explain.`

// GeminiRecommender produces recommendations with a Gemini model instead of
// the HTTP backend. Its results have the same shape and failure type.
type GeminiRecommender struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

var _ repository.Recommender = (*GeminiRecommender)(nil)

// NewGeminiClient builds a genai client. An API key selects the Gemini API,
// otherwise Vertex AI is used with project and location.
func NewGeminiClient(ctx context.Context, apiKey, projectID, location string) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	}
	if apiKey != "" {
		cfg = &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	}
	return genai.NewClient(ctx, cfg)
}

func NewGeminiRecommender(c *genai.Client, model string, logger *slog.Logger) *GeminiRecommender {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiRecommender{client: c, model: model, log: logger}
}

func (g *GeminiRecommender) Fetch(ctx context.Context, title string, topK int) (*entity.RecommendationResult, error) {
	title = strings.TrimSpace(title)
	prompt := fmt.Sprintf(recommendInstruction, topK) + "\nQuery movie: " + title

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		g.log.WarnContext(ctx, "gemini.generate_failed", "model", g.model, "error", err)
		return nil, &entity.BackendError{
			Message: "Gemini recommendation request failed. Check the model configuration.",
			Err:     err,
		}
	}

	result, err := decodeRecommendations([]byte(stripCodeFence(resp.Text())), title)
	if err != nil {
		return nil, err
	}
	if len(result.Recommendations) > topK {
		result.Recommendations = result.Recommendations[:topK]
	}
	return result, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add anyway.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
