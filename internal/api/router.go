package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/contentforge/contentforge/internal/api/middleware"
	"github.com/contentforge/contentforge/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	// WorkerSecret guards the internal worker and cron routes.
	WorkerSecret string

	HealthHandler  http.HandlerFunc
	SubmitHandler  http.HandlerFunc
	StatusHandler  http.HandlerFunc
	WorkerHandler  http.HandlerFunc
	CleanupHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/generations", orNotImplemented(deps.SubmitHandler))
		r.Get("/api/v1/generations/{generationID}", orNotImplemented(deps.StatusHandler))
	})

	// Internal routes for the cron scheduler
	r.Group(func(r chi.Router) {
		r.Use(mw.SharedSecret(deps.WorkerSecret))

		r.Post("/internal/v1/worker/run", orNotImplemented(deps.WorkerHandler))
		r.Post("/internal/v1/cron/cleanup", orNotImplemented(deps.CleanupHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
