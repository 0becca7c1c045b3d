package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starford/rounded/internal/catalogservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *catalogservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *catalogservice.Service) *Handler {
	return &Handler{svc: svc}
}

// repoIndex parses the {repo} path parameter.
func repoIndex(r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "repo"))
	if err != nil {
		return 0, false
	}
	return i, true
}

// identifier extracts {identifier}, accepting percent-encoded values.
func identifier(r *http.Request) string {
	raw := chi.URLParam(r, "identifier")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListRepositories handles GET /api/repos.
//
//	@Summary		List every configured repository slot in order
//	@Tags			repos
//	@Produce		json
//	@Success		200	{object}	RepoListResponse
//	@Security		BearerAuth
//	@Router			/repos [get]
func (h *Handler) ListRepositories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RepoListResponse{
		Repositories: h.svc.ListRepositories(r.Context()),
		Status:       h.svc.Status(),
	})
}

// GetRepository handles GET /api/repos/{repo}.
//
//	@Summary		Get a repository with its packages and featured tiles
//	@Tags			repos
//	@Produce		json
//	@Param			repo	path		int	true	"Repository index"
//	@Success		200		{object}	RepoDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/repos/{repo} [get]
func (h *Handler) GetRepository(w http.ResponseWriter, r *http.Request) {
	idx, ok := repoIndex(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody(codeBadRequest, "repo must be an integer index"))
		return
	}
	repo, err := h.svc.GetRepository(r.Context(), idx)
	if err != nil {
		writeServiceError(w, "get repository", err)
		return
	}
	writeJSON(w, http.StatusOK, repo)
}

// GetPackage handles GET /api/repos/{repo}/packages/{identifier}.
//
//	@Summary		Get a package of a repository
//	@Tags			packages
//	@Produce		json
//	@Param			repo		path		int		true	"Repository index"
//	@Param			identifier	path		string	true	"Package identifier"
//	@Success		200			{object}	PackageDetail
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/repos/{repo}/packages/{identifier} [get]
func (h *Handler) GetPackage(w http.ResponseWriter, r *http.Request) {
	idx, ok := repoIndex(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody(codeBadRequest, "repo must be an integer index"))
		return
	}
	id := identifier(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(codeBadRequest, "identifier is required"))
		return
	}
	p, err := h.svc.GetPackage(r.Context(), idx, id)
	if err != nil {
		writeServiceError(w, "get package", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Featured handles GET /api/featured.
//
//	@Summary		Featured tiles across all loaded repositories
//	@Tags			featured
//	@Produce		json
//	@Success		200	{object}	FeaturedResponse
//	@Security		BearerAuth
//	@Router			/featured [get]
func (h *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FeaturedResponse{Tiles: h.svc.Featured(r.Context())})
}

// Search handles GET /api/search?q=...&limit=....
//
//	@Summary		Search packages
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(codeBadRequest, "q parameter is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Failures handles GET /api/failures.
//
//	@Summary		Manifests that failed to load in the current catalog
//	@Tags			repos
//	@Produce		json
//	@Success		200	{object}	FailuresResponse
//	@Security		BearerAuth
//	@Router			/failures [get]
func (h *Handler) Failures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FailuresResponse{Failures: h.svc.Failures(r.Context())})
}

// Refresh handles POST /api/refresh.
//
//	@Summary		Rebuild the catalog from the configured sources
//	@Tags			repos
//	@Produce		json
//	@Success		202	{object}	RefreshResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	gen, err := h.svc.StartRefresh(context.WithoutCancel(r.Context()))
	if err != nil {
		writeServiceError(w, "refresh", err)
		return
	}
	writeJSON(w, http.StatusAccepted, RefreshResponse{Generation: gen})
}

// Live handles GET /health/live.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready. It answers 503 until every slot of the
// current catalog is filled.
func (h *Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	st := h.svc.Status()
	if !st.Ready {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "loading", "catalog": st})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "catalog": st})
}
