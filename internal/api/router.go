package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/rounded/internal/catalogservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *catalogservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Repositories and packages, addressed by slot index.
	r.Get("/repos", h.ListRepositories)
	r.Get("/repos/{repo}", h.GetRepository)
	r.Get("/repos/{repo}/packages/{identifier}", h.GetPackage)

	r.Get("/featured", h.Featured)
	r.Get("/search", h.Search)
	r.Get("/failures", h.Failures)
	r.Post("/refresh", h.Refresh)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

// NewHealthRouter serves the unauthenticated liveness and readiness probes.
func NewHealthRouter(svc *catalogservice.Service) chi.Router {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Get("/live", h.Live)
	r.Get("/ready", h.Ready)
	return r
}
