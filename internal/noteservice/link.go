package noteservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/vaultlink/internal/apperr"
	"github.com/starford/vaultlink/internal/models"
	"github.com/starford/vaultlink/internal/storage"
)

// Insert positions understood by LinkNotes besides a line index.
const (
	PositionEnd    = "end"
	PositionCursor = "cursor"
)

// Position is where LinkNotes places the new link: "end", "cursor", or a
// zero-based line index. It decodes from a JSON string or number.
type Position string

// UnmarshalJSON accepts both "end" and 3.
func (p *Position) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = Position(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("position must be a string or a line number: %w", err)
	}
	*p = Position(n.String())
	return nil
}

// LinkRequest asks for a wikilink from Source to Target.
type LinkRequest struct {
	Source   string   `json:"sourceNote"`
	Target   string   `json:"targetNote"`
	LinkText string   `json:"linkText,omitempty"`
	Position Position `json:"insertPosition,omitempty"`
}

// Validate checks the required fields.
func (r LinkRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Source, validation.Required),
		validation.Field(&r.Target, validation.Required),
	)
}

// LinkResult reports what LinkNotes did.
type LinkResult struct {
	Source    string `json:"sourceNote"`
	Target    string `json:"targetNote"`
	Link      string `json:"link"`
	Duplicate bool   `json:"duplicate"`
	Message   string `json:"message"`
}

// LinkNotes adds [[target|text]] to the source note. The target's
// extension is dropped from the link and text defaults to its base name.
// When the source already links to the target nothing is written and the
// result carries a warning instead.
func (s *Service) LinkNotes(ctx context.Context, req LinkRequest) (*LinkResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, p := range []string{req.Source, req.Target} {
		if _, err := s.store.Resolve(p); err != nil {
			return nil, err
		}
		if !s.store.Exists(p) {
			return nil, fmt.Errorf("note %s: %w", p, apperr.ErrNotFound)
		}
	}

	data, err := s.store.Read(req.Source)
	if err != nil {
		return nil, err
	}
	content := string(data)

	target := strings.TrimSuffix(req.Target, storage.DocumentExt)
	text := req.LinkText
	if text == "" {
		text = path.Base(target)
	}
	link := fmt.Sprintf("[[%s|%s]]", target, text)
	result := &LinkResult{Source: req.Source, Target: req.Target, Link: link}

	existing := regexp.MustCompile(`\[\[` + regexp.QuoteMeta(target) + `(\|[^\]]+)?\]\]`)
	if existing.MatchString(content) {
		result.Duplicate = true
		result.Message = fmt.Sprintf("Warning: '%s' already links to '%s'. No duplicate link was created.", req.Source, req.Target)
		return result, nil
	}

	updated, err := insertLink(content, link, req.Position)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(req.Source, []byte(updated)); err != nil {
		return nil, err
	}

	s.notifier.PublishChange(models.ChangeNoteUpdated, req.Source)
	s.logger.Info("link added",
		slog.String("source", req.Source),
		slog.String("target", req.Target))
	result.Message = fmt.Sprintf("Added a link to '%s' in '%s'.", req.Target, req.Source)
	return result, nil
}

// insertLink appends link on a new line, or inserts it as line pos.
// The cursor position has no meaning outside an editor and appends.
func insertLink(content, link string, pos Position) (string, error) {
	switch pos {
	case "", PositionEnd, PositionCursor:
		return content + "\n" + link, nil
	}
	idx, err := strconv.Atoi(string(pos))
	if err != nil {
		return "", fmt.Errorf("%w: insert position %q", apperr.ErrInvalidArgument, pos)
	}
	lines := strings.Split(content, "\n")
	if idx < 0 || idx > len(lines) {
		return "", fmt.Errorf("%w: insert position %d outside 0..%d", apperr.ErrInvalidArgument, idx, len(lines))
	}
	lines = append(lines[:idx], append([]string{link}, lines[idx:]...)...)
	return strings.Join(lines, "\n"), nil
}
