// Package noteservice implements the single-note operations of the vault:
// reading, updating, creating from a template, browsing, and linking.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/vaultlink/internal/apperr"
	"github.com/starford/vaultlink/internal/checksum"
	"github.com/starford/vaultlink/internal/models"
	"github.com/starford/vaultlink/internal/parser"
	"github.com/starford/vaultlink/internal/storage"
	"github.com/starford/vaultlink/internal/template"
)

// Note is the full representation of a vault document.
type Note struct {
	Path        string         `json:"path"`
	Content     string         `json:"content"`
	Checksum    string         `json:"checksum"`
	Tags        []string       `json:"tags"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
}

// CreateRequest asks for a note rendered from a template.
type CreateRequest struct {
	Template   string         `json:"templateName"`
	Variables  map[string]any `json:"variables"`
	OutputPath string         `json:"outputPath"`
	Overwrite  bool           `json:"overwrite"`
}

// Validate checks the required fields.
func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Template, validation.Required),
		validation.Field(&r.OutputPath, validation.Required),
	)
}

// Notifier is told about every vault write the service performs.
type Notifier interface {
	PublishChange(kind string, paths ...string)
}

type nopNotifier struct{}

func (nopNotifier) PublishChange(string, ...string) {}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the receiver of change notifications.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// Service coordinates storage, templates, and change notifications.
type Service struct {
	store     storage.Provider
	templates *template.Engine
	parser    parser.Parser
	notifier  Notifier
	logger    *slog.Logger
}

// NewService creates a new note service.
func NewService(store storage.Provider, templates *template.Engine, opts ...Option) *Service {
	s := &Service{
		store:     store,
		templates: templates,
		parser:    parser.Pattern{},
		notifier:  nopNotifier{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReadNote returns the note at path.
func (s *Service) ReadNote(ctx context.Context, path string) (*Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.store.Resolve(path); err != nil {
		return nil, err
	}
	data, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	return s.buildNote(path, data), nil
}

// UpdateNote replaces the content of the note at path, creating it when
// absent. A non-empty ifMatch must equal the checksum of the current
// content, otherwise apperr.ErrConflict is returned.
func (s *Service) UpdateNote(ctx context.Context, path, content, ifMatch string) (*Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.store.Resolve(path); err != nil {
		return nil, err
	}

	kind := models.ChangeNoteUpdated
	existing, err := s.store.Read(path)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		if ifMatch != "" {
			return nil, err
		}
		kind = models.ChangeNoteCreated
	case err != nil:
		return nil, err
	case !checksum.Matches(existing, ifMatch):
		return nil, fmt.Errorf("note %s changed since %s: %w", path, ifMatch, apperr.ErrConflict)
	}

	data := []byte(content)
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}
	s.notifier.PublishChange(kind, path)
	s.logger.Info("note written", slog.String("path", path), slog.String("kind", kind))
	return s.buildNote(path, data), nil
}

// CreateFromTemplate renders req.Template and writes the result to
// req.OutputPath. An existing file is only replaced when req.Overwrite is set.
func (s *Service) CreateFromTemplate(ctx context.Context, req CreateRequest) (*Note, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
	}
	if _, err := s.store.Resolve(req.OutputPath); err != nil {
		return nil, err
	}

	content, err := s.templates.Render(ctx, req.Template, req.Variables)
	if err != nil {
		return nil, err
	}

	kind := models.ChangeNoteCreated
	if s.store.Exists(req.OutputPath) {
		if !req.Overwrite {
			return nil, fmt.Errorf("note %s: %w", req.OutputPath, apperr.ErrAlreadyExists)
		}
		kind = models.ChangeNoteUpdated
	}

	data := []byte(content)
	if err := s.store.Write(req.OutputPath, data); err != nil {
		return nil, err
	}
	s.notifier.PublishChange(kind, req.OutputPath)
	s.logger.Info("note created from template",
		slog.String("path", req.OutputPath),
		slog.String("template", req.Template))
	return s.buildNote(req.OutputPath, data), nil
}

// SearchFiles lists the files and directories below dir whose name
// contains pattern, directories first.
func (s *Service) SearchFiles(ctx context.Context, dir, pattern string) ([]models.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Entries(dir, pattern)
}

// ListTemplates returns the templates available for CreateFromTemplate.
func (s *Service) ListTemplates(ctx context.Context) ([]template.Info, error) {
	return s.templates.List(ctx)
}

func (s *Service) buildNote(path string, data []byte) *Note {
	res := s.parser.Parse(string(data))
	tags := res.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Note{
		Path:        path,
		Content:     string(data),
		Checksum:    checksum.Sum(data),
		Tags:        tags,
		Frontmatter: res.Frontmatter,
	}
}
