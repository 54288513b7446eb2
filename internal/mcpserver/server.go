// Package mcpserver exposes the vault operations as MCP tools over stdio
// or streamable HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/vaultlink/internal/graph"
	"github.com/starford/vaultlink/internal/noteservice"
)

// Name and Version identify the server during MCP initialization.
const (
	Name    = "vaultlink"
	Version = "1.0.0"
)

// ConventionsURI is the resource describing the vault's link and tag syntax.
const ConventionsURI = "vaultlink://conventions"

// Server wraps the MCP server with the vault tools.
type Server struct {
	mcp    *server.MCPServer
	graph  *graph.Engine
	notes  *noteservice.Service
	logger *slog.Logger
}

// New creates a new MCP server with every vault tool registered.
func New(engine *graph.Engine, notes *noteservice.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{graph: engine, notes: notes, logger: logger}

	s.mcp = server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithInstructions("Tools for a Markdown vault: tags, wikilinks, backlinks, maps of contents and templates. "+
			"Paths are relative to the vault root. Read "+ConventionsURI+" for the link and tag syntax."),
	)
	s.registerTools()

	s.mcp.AddResource(
		mcp.NewResource(ConventionsURI, "Vault conventions",
			mcp.WithResourceDescription("How tags, wikilinks and label links are recognized in vault notes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readConventions,
	)
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("create_note_from_template",
		mcp.WithDescription("Create a note by filling a template from the template folder."),
		mcp.WithString("templateName", mcp.Required(), mcp.Description("Template name without the .md extension")),
		mcp.WithObject("variables", mcp.Description("Values for the template's {{placeholders}}")),
		mcp.WithString("outputPath", mcp.Required(), mcp.Description("Vault-relative path of the new note")),
		mcp.WithBoolean("overwrite", mcp.Description("Replace an existing note at outputPath")),
	), s.createNoteFromTemplate)

	s.mcp.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the available templates with their placeholders."),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.listTemplates)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a note."),
		mcp.WithString("notePath", mcp.Required(), mcp.Description("Vault-relative path to the note")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Replace the content of a note, creating it when absent."),
		mcp.WithString("notePath", mcp.Required(), mcp.Description("Vault-relative path to the note")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New note content")),
		mcp.WithString("checksum", mcp.Description("Checksum from read; the update fails if the note changed since")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every tag used in the vault."),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("rename_tag",
		mcp.WithDescription("Rename a tag in every note, inline and in front matter."),
		mcp.WithString("oldTag", mcp.Required(), mcp.Description("Current tag, with or without #")),
		mcp.WithString("newTag", mcp.Required(), mcp.Description("Replacement tag, with or without #")),
	), s.renameTag)

	s.mcp.AddTool(mcp.NewTool("search_files",
		mcp.WithDescription("Find files and directories whose name contains a pattern."),
		mcp.WithString("searchPath", mcp.Description("Directory to search, vault root when empty")),
		mcp.WithString("pattern", mcp.Description("Name substring, everything when empty")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.searchFiles)

	s.mcp.AddTool(mcp.NewTool("link_notes",
		mcp.WithDescription("Add a wikilink from one note to another."),
		mcp.WithString("sourceNote", mcp.Required(), mcp.Description("Note that receives the link")),
		mcp.WithString("targetNote", mcp.Required(), mcp.Description("Note the link points to")),
		mcp.WithString("linkText", mcp.Description("Display text, the target's name when empty")),
		mcp.WithString("insertPosition", mcp.Description(`"end", "cursor", or a zero-based line number`)),
	), s.linkNotes)

	s.mcp.AddTool(mcp.NewTool("find_broken_links",
		mcp.WithDescription("Report links whose target does not exist, with similar note names."),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.findBrokenLinks)

	s.mcp.AddTool(mcp.NewTool("analyze_backlinks",
		mcp.WithDescription("List the links pointing at a note with popularity and centrality."),
		mcp.WithString("targetNote", mcp.Required(), mcp.Description("Vault-relative path of the analyzed note")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.analyzeBacklinks)

	s.mcp.AddTool(mcp.NewTool("create_moc",
		mcp.WithDescription("Generate a map of contents note linking matching notes."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Heading of the map")),
		mcp.WithString("targetPath", mcp.Required(), mcp.Description("Vault-relative path to write the map to")),
		mcp.WithString("sourcePattern", mcp.Description("Only include notes whose path contains this")),
		mcp.WithString("groupBy", mcp.Enum(string(graph.GroupNone), string(graph.GroupFolder), string(graph.GroupTag)),
			mcp.Description("Section notes by folder or tag")),
		mcp.WithBoolean("includeDescription", mcp.Description("Append each note's one-line description")),
	), s.createMOC)
}

// ServeStdio serves MCP on stdin/stdout until the input closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// HTTPHandler returns a streamable HTTP transport for mounting on a router.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp, server.WithStateLess(true))
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) readConventions(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ConventionsURI,
			MIMEType: "text/markdown",
			Text:     Conventions,
		},
	}, nil
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
