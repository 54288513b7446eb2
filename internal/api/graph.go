package api

import "net/http"

// ListTags handles GET /api/tags.
//
//	@Summary		List every tag in the vault
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	TagsResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.graph.ListTags(r.Context())
	if err != nil {
		writeError(w, "list tags", err)
		return
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: tags})
}

// RenameTag handles POST /api/tags/rename.
//
//	@Summary		Rename a tag across the vault
//	@Tags			tags
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RenameTagRequest	true	"Old and new tag"
//	@Success		200		{object}	graph.RenameResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags/rename [post]
func (h *Handler) RenameTag(w http.ResponseWriter, r *http.Request) {
	var req RenameTagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.graph.RenameTag(r.Context(), req.OldTag, req.NewTag)
	if err != nil {
		writeError(w, "rename tag", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// BrokenLinks handles GET /api/links/broken.
//
//	@Summary		Report links whose target does not exist
//	@Tags			links
//	@Produce		json
//	@Success		200	{object}	graph.BrokenLinkReport
//	@Security		BearerAuth
//	@Router			/links/broken [get]
func (h *Handler) BrokenLinks(w http.ResponseWriter, r *http.Request) {
	report, err := h.graph.FindBrokenLinks(r.Context())
	if err != nil {
		writeError(w, "find broken links", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Backlinks handles GET /api/backlinks/*.
//
//	@Summary		Analyze the links pointing at a note
//	@Tags			links
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	graph.BacklinkReport
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/backlinks/{path} [get]
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	report, err := h.graph.AnalyzeBacklinks(r.Context(), path)
	if err != nil {
		writeError(w, "analyze backlinks", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// CreateMOC handles POST /api/moc.
//
//	@Summary		Generate a map of contents note
//	@Tags			moc
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MOCRequest	true	"Title, target path and grouping"
//	@Success		201		{object}	graph.MOCResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/moc [post]
func (h *Handler) CreateMOC(w http.ResponseWriter, r *http.Request) {
	var req MOCRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.graph.CreateMOC(r.Context(), req)
	if err != nil {
		writeError(w, "create moc", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
