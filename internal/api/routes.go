package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sneakify/feed-adapter/internal/ingest"
	"github.com/sneakify/feed-adapter/internal/snapshot"
)

// Refresher exposes the ingestion loop to the HTTP surface.
type Refresher interface {
	TriggerRefresh() bool
	LastRun() ingest.RunSummary
}

// RegisterRoutes registers all HTTP routes on the Fiber app.
// nc may be nil when the NATS bus is disabled; health then skips that check.
func RegisterRoutes(app *fiber.App, nc *nats.Conn, st snapshot.Store, orch Refresher) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		checks := map[string]string{
			"store": "ok",
		}
		status := "ok"
		code := fiber.StatusOK

		if nc != nil {
			checks["nats"] = "ok"
			if !nc.IsConnected() {
				checks["nats"] = "disconnected"
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			} else if err := nc.FlushTimeout(1 * time.Second); err != nil {
				checks["nats"] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}

		healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := st.HealthCheck(healthCtx); err != nil {
			checks["store"] = err.Error()
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	})

	// API routes
	v1 := app.Group("/api/v1")

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		if !orch.TriggerRefresh() {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"status": "already_running",
			})
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"status": "started",
		})
	})

	v1.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(orch.LastRun())
	})
}
