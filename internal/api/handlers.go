package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vaultlink/internal/graph"
	"github.com/starford/vaultlink/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	graph *graph.Engine
	notes *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(engine *graph.Engine, notes *noteservice.Service) *Handler {
	return &Handler{graph: engine, notes: notes}
}

// wildcardPath extracts the vault path after the route prefix.
// Supports encoded slashes from OpenAPI clients (e.g. topics%2Fnote.md).
func wildcardPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// GetNote handles GET /api/notes/*.
//
//	@Summary		Read a note by path
//	@Tags			notes
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{path} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	note, err := h.notes.ReadNote(r.Context(), path)
	if err != nil {
		writeError(w, "read note", err)
		return
	}
	w.Header().Set("ETag", `"`+note.Checksum+`"`)
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a note from a template
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Template and output path"
//	@Success		201		{object}	Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	note, err := h.notes.CreateFromTemplate(r.Context(), req)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/*.
//
//	@Summary		Replace a note's content
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			path		path	string				true	"Note path"
//	@Param			If-Match	header	string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	UpdateNoteRequest	true	"Updated content"
//	@Success		200		{object}	Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{path} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req UpdateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	note, err := h.notes.UpdateNote(r.Context(), path, req.Content, r.Header.Get("If-Match"))
	if err != nil {
		writeError(w, "update note", err)
		return
	}
	w.Header().Set("ETag", `"`+note.Checksum+`"`)
	writeJSON(w, http.StatusOK, note)
}

// ListTemplates handles GET /api/templates.
//
//	@Summary		List note templates
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	TemplatesResponse
//	@Security		BearerAuth
//	@Router			/templates [get]
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.notes.ListTemplates(r.Context())
	if err != nil {
		writeError(w, "list templates", err)
		return
	}
	writeJSON(w, http.StatusOK, TemplatesResponse{Templates: templates})
}

// SearchFiles handles GET /api/files.
//
//	@Summary		Find files and directories by name
//	@Tags			files
//	@Produce		json
//	@Param			path	query		string	false	"Directory to search"
//	@Param			pattern	query		string	false	"Name substring"
//	@Success		200		{object}	FilesResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files [get]
func (h *Handler) SearchFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.notes.SearchFiles(r.Context(), q.Get("path"), q.Get("pattern"))
	if err != nil {
		writeError(w, "search files", err)
		return
	}
	writeJSON(w, http.StatusOK, FilesResponse{Entries: entries})
}

// LinkNotes handles POST /api/links.
//
//	@Summary		Add a wikilink from one note to another
//	@Tags			links
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LinkRequest	true	"Source, target and position"
//	@Success		200		{object}	noteservice.LinkResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/links [post]
func (h *Handler) LinkNotes(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.notes.LinkNotes(r.Context(), req)
	if err != nil {
		writeError(w, "link notes", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
