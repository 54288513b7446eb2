package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/starford/vaultlink/internal/apperr"
	"github.com/starford/vaultlink/internal/models"
	"github.com/starford/vaultlink/internal/parser"
)

// RenameResult reports a vault-wide tag rename.
type RenameResult struct {
	OldTag        string   `json:"oldTag"`
	NewTag        string   `json:"newTag"`
	ModifiedFiles []string `json:"modifiedFiles"`
	Count         int      `json:"count"`
	Message       string   `json:"message"`
}

// ListTags returns every distinct tag in the vault, sorted.
func (e *Engine) ListTags(ctx context.Context) ([]string, error) {
	res, err := e.scan(ctx, "list_tags")
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	for _, doc := range res.Documents {
		for _, t := range e.parser.Parse(doc.Content).Tags {
			set[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags, nil
}

// RenameTag replaces oldTag with newTag in every document, inline and in the
// front-matter tag list. Only documents that change are written.
func (e *Engine) RenameTag(ctx context.Context, oldTag, newTag string) (*RenameResult, error) {
	oldTag, newTag = parser.NormalizeTag(oldTag), parser.NormalizeTag(newTag)
	if oldTag == "#" || newTag == "#" {
		return nil, fmt.Errorf("%w: tag names must not be empty", apperr.ErrInvalidArgument)
	}
	if !parser.ValidTag(newTag) {
		return nil, fmt.Errorf("%w: tag %q may only contain letters, digits, '_', '-' and '/'", apperr.ErrInvalidArgument, newTag)
	}

	res, err := e.scan(ctx, "rename_tag")
	if err != nil {
		return nil, err
	}

	result := &RenameResult{OldTag: oldTag, NewTag: newTag, ModifiedFiles: []string{}}
	for _, doc := range res.Documents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		updated, changed := parser.RenameTag(doc.Content, oldTag, newTag)
		if !changed {
			continue
		}
		if err := e.store.Write(doc.Path, []byte(updated)); err != nil {
			return nil, err
		}
		result.ModifiedFiles = append(result.ModifiedFiles, doc.Path)
	}
	result.Count = len(result.ModifiedFiles)
	result.Message = fmt.Sprintf("Renamed tag '%s' to '%s'. Updated %d files.", oldTag, newTag, result.Count)

	if result.Count > 0 {
		e.notifier.PublishChange(models.ChangeTagRenamed, result.ModifiedFiles...)
	}
	e.logger.Info("tag renamed",
		slog.String("old", oldTag),
		slog.String("new", newTag),
		slog.Int("files", result.Count))
	return result, nil
}
