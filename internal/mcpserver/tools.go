package mcpserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/vaultlink/internal/apperr"
	"github.com/starford/vaultlink/internal/graph"
	"github.com/starford/vaultlink/internal/noteservice"
)

// toolError turns a failure into an error result. Failures outside the
// caller's control are logged.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	if !isClientError(err) {
		s.logger.Error("tool failed", slog.String("tool", tool), slog.String("error", err.Error()))
	}
	return mcp.NewToolResultError(err.Error())
}

func isClientError(err error) bool {
	for _, target := range []error{apperr.ErrInvalidPath, apperr.ErrNotFound, apperr.ErrAlreadyExists, apperr.ErrInvalidArgument, apperr.ErrConflict} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *Server) createNoteFromTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in noteservice.CreateRequest
	if err := req.BindArguments(&in); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.notes.CreateFromTemplate(ctx, in)
	if err != nil {
		return s.toolError("create_note_from_template", err), nil
	}
	return mcp.NewToolResultText("Created note '" + note.Path + "'"), nil
}

func (s *Server) listTemplates(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates, err := s.notes.ListTemplates(ctx)
	if err != nil {
		return s.toolError("list_templates", err), nil
	}
	return jsonResult(templates)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("notePath")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.notes.ReadNote(ctx, path)
	if err != nil {
		return s.toolError("read_note", err), nil
	}
	return mcp.NewToolResultText(note.Content), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("notePath")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.notes.UpdateNote(ctx, path, content, req.GetString("checksum", ""))
	if err != nil {
		return s.toolError("update_note", err), nil
	}
	return mcp.NewToolResultText("Updated note '" + note.Path + "' (checksum " + note.Checksum + ")"), nil
}

func (s *Server) listTags(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.graph.ListTags(ctx)
	if err != nil {
		return s.toolError("list_tags", err), nil
	}
	return jsonResult(tags)
}

func (s *Server) renameTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldTag, err := req.RequireString("oldTag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newTag, err := req.RequireString("newTag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.graph.RenameTag(ctx, oldTag, newTag)
	if err != nil {
		return s.toolError("rename_tag", err), nil
	}
	return mcp.NewToolResultText(res.Message), nil
}

func (s *Server) searchFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.notes.SearchFiles(ctx, req.GetString("searchPath", ""), req.GetString("pattern", ""))
	if err != nil {
		return s.toolError("search_files", err), nil
	}
	return jsonResult(entries)
}

func (s *Server) linkNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in noteservice.LinkRequest
	if err := req.BindArguments(&in); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.notes.LinkNotes(ctx, in)
	if err != nil {
		return s.toolError("link_notes", err), nil
	}
	return mcp.NewToolResultText(res.Message), nil
}

func (s *Server) findBrokenLinks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.graph.FindBrokenLinks(ctx)
	if err != nil {
		return s.toolError("find_broken_links", err), nil
	}
	return jsonResult(report)
}

func (s *Server) analyzeBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("targetNote")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := s.graph.AnalyzeBacklinks(ctx, target)
	if err != nil {
		return s.toolError("analyze_backlinks", err), nil
	}
	return jsonResult(report)
}

func (s *Server) createMOC(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var opts graph.MOCOptions
	if err := req.BindArguments(&opts); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.graph.CreateMOC(ctx, opts)
	if err != nil {
		return s.toolError("create_moc", err), nil
	}
	return mcp.NewToolResultText(res.Message), nil
}
