package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/ansuz/internal/docservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// corpusRoot is used to resolve the assets directory.
func NewRouter(svc *docservice.Service, authEnabled bool, token string, sseHandler http.Handler, corpusRoot string) chi.Router {
	h := NewHandler(svc)
	ah := NewAssetHandler(corpusRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents CRUD.
	r.Get("/docs", h.ListDocs)
	r.Post("/docs", h.CreateDoc)
	r.Get("/docs/*", h.GetDoc)
	r.Put("/docs/*", h.UpdateDoc)
	r.Delete("/docs/*", h.DeleteDoc)

	// Search and graph.
	r.Get("/search", h.Search)
	r.Get("/graph", h.Graph)
	r.Get("/backlinks/*", h.Backlinks)

	// Rendering, lint, history.
	r.Get("/render/*", h.RenderDoc)
	r.Get("/lint", h.Lint)
	r.Get("/history/*", h.History)

	// Asset upload (auth-protected).
	r.Post("/assets", ah.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
