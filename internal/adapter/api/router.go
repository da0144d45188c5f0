package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

type BuildInfo struct {
	Version string
	Env     string
}

func SetupRouter(app *fiber.App, handler *RecommendationHandler, info BuildInfo) {
	// Middleware
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"version": info.Version,
			"env":     info.Env,
		})
	})

	// API Versioning
	v1 := app.Group("/v1")
	// Endpoints
	v1.Post("/recommendations", handler.HandleRecommend)
	v1.Get("/movies/lookup", handler.HandleLookup)
}
