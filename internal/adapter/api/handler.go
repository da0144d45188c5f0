package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"mflix/internal/domain/entity"
	"mflix/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const SessionHeader = "X-Session-ID"

type RecommendationHandler struct {
	orchestrator *usecase.Orchestrator
	enricher     *usecase.Enricher
	timeout      time.Duration
}

func NewRecommendationHandler(orch *usecase.Orchestrator, enr *usecase.Enricher, timeout time.Duration) *RecommendationHandler {
	return &RecommendationHandler{orchestrator: orch, enricher: enr, timeout: timeout}
}

type recommendationResponse struct {
	*entity.Submission
	NoResults  bool `json:"no_results"`
	Superseded bool `json:"superseded"`
}

func (h *RecommendationHandler) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	if h.timeout > 0 {
		return context.WithTimeout(c.UserContext(), h.timeout)
	}
	return context.WithCancel(c.UserContext())
}

func (h *RecommendationHandler) HandleRecommend(c *fiber.Ctx) error {
	var in entity.SubmissionInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	in.Session = strings.TrimSpace(c.Get(SessionHeader))
	if in.Session == "" {
		in.Session = uuid.NewString()
	}
	c.Set(SessionHeader, in.Session)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	// The delivery layer maps the business error to HTTP status codes
	sub, err := h.orchestrator.Submit(ctx, in)
	if err != nil {
		var ve *entity.ValidationError
		if errors.As(err, &ve) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error(), "state": sub.State, "id": sub.ID})
		}
		body := fiber.Map{"error": err.Error(), "state": sub.State, "id": sub.ID}
		var be *entity.BackendError
		if errors.As(err, &be) && be.StatusCode != 0 {
			body["backend_status"] = be.StatusCode
		}
		return c.Status(fiber.StatusBadGateway).JSON(body)
	}

	return c.Status(fiber.StatusOK).JSON(recommendationResponse{
		Submission: sub,
		NoResults:  sub.NoResults(),
		Superseded: !h.orchestrator.IsLatest(ctx, sub),
	})
}

// HandleLookup enriches a single raw title and reports how it resolved.
func (h *RecommendationHandler) HandleLookup(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("title"))
	if raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": entity.ErrEmptyTitle.Error()})
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	res := h.enricher.Lookup(ctx, raw)
	return c.Status(fiber.StatusOK).JSON(res)
}
