// Package rest wires the HTTP router for the policy API.
package rest

import (
	"net/http"

	"policyapi/application/ports"
	"policyapi/application/services"
	"policyapi/infrastructure/config"
	"policyapi/interfaces/http/rest/handlers"
	"policyapi/interfaces/http/rest/middleware"
	apperrors "policyapi/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter builds the chi router with the full middleware chain. Route order
// matters under /items: the static search and stats paths must register
// before the {policyID} wildcard.
func NewRouter(cfg *config.Config, service *services.PolicyService, metrics ports.Metrics, logger *zap.Logger) http.Handler {
	h := handlers.NewPolicyHandler(service, logger)

	r := chi.NewRouter()

	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.Recovery(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "x-api-key"},
	}))
	r.Use(middleware.APIKey(cfg.RequireAPIKey, cfg.ValidAPIKeys, logger))

	// Unknown paths and methods both map to the same 404 envelope.
	notFound := func(w http.ResponseWriter, req *http.Request) {
		handlers.RespondError(w, req, logger, http.StatusNotFound, "Endpoint not found", apperrors.CodeNotFound)
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/", h.Info)
	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Post("/search", h.Search)
		r.Get("/stats", h.Stats)
		r.Get("/{policyID}", h.Get)
		r.Put("/{policyID}", h.Update)
		r.Delete("/{policyID}", h.Delete)
	})

	return r
}
