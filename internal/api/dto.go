package api

import (
	"github.com/starford/vaultlink/internal/graph"
	"github.com/starford/vaultlink/internal/models"
	"github.com/starford/vaultlink/internal/noteservice"
	"github.com/starford/vaultlink/internal/template"
)

// Note is the full note response type (aliased from the domain layer).
type Note = noteservice.Note

// CreateNoteRequest is the request body for creating a note from a template.
type CreateNoteRequest = noteservice.CreateRequest

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Content string `json:"content" example:"# Updated\nContent" validate:"required"`
}

// RenameTagRequest is the request body for a vault-wide tag rename.
type RenameTagRequest struct {
	OldTag string `json:"oldTag" example:"#proj" validate:"required"`
	NewTag string `json:"newTag" example:"#project" validate:"required"`
}

// LinkRequest is the request body for adding a wikilink between notes.
type LinkRequest = noteservice.LinkRequest

// MOCRequest is the request body for generating a map of contents.
type MOCRequest = graph.MOCOptions

// TagsResponse wraps the tag listing.
type TagsResponse struct {
	Tags []string `json:"tags" validate:"required"`
}

// FilesResponse wraps a file search.
type FilesResponse struct {
	Entries []models.Entry `json:"entries" validate:"required"`
}

// TemplatesResponse wraps the template listing.
type TemplatesResponse struct {
	Templates []template.Info `json:"templates" validate:"required"`
}
