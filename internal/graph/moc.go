package graph

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/vaultlink/internal/apperr"
	"github.com/starford/vaultlink/internal/models"
	"github.com/starford/vaultlink/internal/parser"
	"github.com/starford/vaultlink/internal/storage"
)

// GroupBy selects how a map of contents is sectioned.
type GroupBy string

// Grouping modes.
const (
	GroupNone   GroupBy = "none"
	GroupFolder GroupBy = "folder"
	GroupTag    GroupBy = "tag"
)

// Distinguished group labels.
const (
	ContentsGroup = "Contents"
	RootGroup     = "Root"
	UntaggedGroup = "Untagged"
)

// MOCOptions describes a map of contents to generate.
type MOCOptions struct {
	Title              string  `json:"title"`
	TargetPath         string  `json:"targetPath"`
	SourcePattern      string  `json:"sourcePattern,omitempty"`
	GroupBy            GroupBy `json:"groupBy,omitempty"`
	IncludeDescription bool    `json:"includeDescription,omitempty"`
}

// Validate checks required fields and the grouping mode.
func (o *MOCOptions) Validate() error {
	if o.GroupBy == "" {
		o.GroupBy = GroupNone
	}
	return validation.ValidateStruct(o,
		validation.Field(&o.Title, validation.Required),
		validation.Field(&o.TargetPath, validation.Required),
		validation.Field(&o.GroupBy, validation.In(GroupNone, GroupFolder, GroupTag)),
	)
}

// Group is one section of a map of contents.
type Group struct {
	Name      string            `json:"name"`
	Documents []models.Document `json:"documents"`
}

// MOCResult reports what CreateMOC wrote.
type MOCResult struct {
	Title      string `json:"title"`
	TargetPath string `json:"targetPath"`
	Count      int    `json:"count"`
	Groups     int    `json:"groups"`
	Message    string `json:"message"`
}

// CreateMOC collects the documents matching opts.SourcePattern, groups
// them, renders a note of wikilinks, and writes it to opts.TargetPath.
// The target note itself is never listed.
func (e *Engine) CreateMOC(ctx context.Context, opts MOCOptions) (*MOCResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
	}
	targetAbs, err := e.store.Resolve(opts.TargetPath)
	if err != nil {
		return nil, err
	}

	res, err := e.scan(ctx, "create_moc")
	if err != nil {
		return nil, err
	}

	var docs []models.Document
	for _, doc := range res.Documents {
		if abs, err := e.store.Resolve(doc.Path); err == nil && abs == targetAbs {
			continue
		}
		if opts.SourcePattern == "" ||
			strings.Contains(doc.Path, opts.SourcePattern) ||
			strings.Contains(path.Base(doc.Path), opts.SourcePattern) {
			docs = append(docs, doc)
		}
	}

	groups := e.groupDocuments(docs, opts.GroupBy)
	content := e.renderMOC(opts, groups)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.store.Write(opts.TargetPath, []byte(content)); err != nil {
		return nil, err
	}

	e.notifier.PublishChange(models.ChangeMOCCreated, opts.TargetPath)
	e.logger.Info("map of contents written",
		slog.String("path", opts.TargetPath),
		slog.Int("notes", len(docs)),
		slog.Int("groups", len(groups)))

	return &MOCResult{
		Title:      opts.Title,
		TargetPath: opts.TargetPath,
		Count:      len(docs),
		Groups:     len(groups),
		Message:    fmt.Sprintf("Created map of contents %q at %s with %d notes", opts.Title, opts.TargetPath, len(docs)),
	}, nil
}

// groupDocuments sections docs in collection order. With GroupTag a document
// appears once under each of its tags.
func (e *Engine) groupDocuments(docs []models.Document, by GroupBy) []Group {
	if by == GroupNone || by == "" {
		return []Group{{Name: ContentsGroup, Documents: docs}}
	}

	var groups []Group
	index := make(map[string]int)
	add := func(name string, doc models.Document) {
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{Name: name})
		}
		groups[i].Documents = append(groups[i].Documents, doc)
	}

	for _, doc := range docs {
		switch by {
		case GroupFolder:
			dir := path.Dir(doc.Path)
			if dir == "." {
				dir = RootGroup
			}
			add(dir, doc)
		case GroupTag:
			tags := e.parser.Parse(doc.Content).Tags
			if len(tags) == 0 {
				add(UntaggedGroup, doc)
				continue
			}
			for _, tag := range tags {
				add(tag, doc)
			}
		}
	}
	return groups
}

func (e *Engine) renderMOC(opts MOCOptions, groups []Group) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", opts.Title)
	fmt.Fprintf(&b, "*This map of contents was generated automatically - %s*\n\n", e.now().Format("2006-01-02"))

	for _, g := range groups {
		fmt.Fprintf(&b, "## %s\n\n", g.Name)
		for _, doc := range g.Documents {
			link := fmt.Sprintf("[[%s|%s]]", strings.TrimSuffix(doc.Path, storage.DocumentExt), baseName(doc.Path))
			desc := ""
			if opts.IncludeDescription {
				desc = parser.Description(doc.Content)
			}
			if desc != "" {
				fmt.Fprintf(&b, "- %s - %s\n", link, desc)
			} else {
				fmt.Fprintf(&b, "- %s\n", link)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
