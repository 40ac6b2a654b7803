package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"contentops/internal/handlers"
	"contentops/internal/store"
	"contentops/internal/workflow"
)

// RegisterRoutes registers all application routes. remote is nil when no
// remote store is configured.
func (s *Server) RegisterRoutes(engine *workflow.Engine, remote *store.Postgres) {
	suggestionHandler := handlers.NewSuggestionHandler(engine)
	articleHandler := handlers.NewArticleHandler(engine)
	probeHandler := handlers.NewProbeHandler(remote)

	api := s.App.Group("/api")

	// Article-side operations
	api.Post("/articles/:id/session", suggestionHandler.StartSession)
	api.Put("/articles/:id/content", articleHandler.UpdateContent)

	// Suggestion lifecycle
	api.Post("/articles/:id/suggestions", suggestionHandler.Create)
	api.Get("/articles/:id/suggestions", suggestionHandler.List)
	api.Post("/suggestions/:id/approve", suggestionHandler.Approve)
	api.Post("/suggestions/:id/reject", suggestionHandler.Reject)
	api.Post("/suggestions/:id/comments", suggestionHandler.AddComment)

	// Draft seeding
	api.Get("/fetch", articleHandler.Fetch)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
