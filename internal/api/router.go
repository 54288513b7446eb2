package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vaultlink/internal/graph"
	"github.com/starford/vaultlink/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(engine *graph.Engine, notes *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(engine, notes)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes.
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/*", h.GetNote)
	r.Put("/notes/*", h.UpdateNote)
	r.Get("/templates", h.ListTemplates)
	r.Get("/files", h.SearchFiles)

	// Tags.
	r.Get("/tags", h.ListTags)
	r.Post("/tags/rename", h.RenameTag)

	// Links and graph analyses.
	r.Post("/links", h.LinkNotes)
	r.Get("/links/broken", h.BrokenLinks)
	r.Get("/backlinks/*", h.Backlinks)
	r.Post("/moc", h.CreateMOC)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
