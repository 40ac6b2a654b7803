package handlers

import (
	"github.com/gofiber/fiber/v3"

	"contentops/internal/store"
)

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	remote *store.Postgres // nil when running on the local store only
}

// NewProbeHandler creates a new probe handler.
func NewProbeHandler(remote *store.Postgres) *ProbeHandler {
	return &ProbeHandler{remote: remote}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
// Returns 200 OK if the application is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint for Kubernetes readiness probes.
// The local fallback store means the service can serve traffic without the
// remote database, so an unreachable remote reports degraded rather than
// failing the probe.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if h.remote != nil {
		if err := h.remote.Ping(c.Context()); err != nil {
			return c.JSON(fiber.Map{
				"status": "degraded",
				"remote": "unreachable",
			})
		}
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
