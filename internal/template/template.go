// Package template lists and renders the note templates stored in the
// vault's template directory.
package template

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/starford/vaultlink/internal/apperr"
	"github.com/starford/vaultlink/internal/models"
	"github.com/starford/vaultlink/internal/parser"
	"github.com/starford/vaultlink/internal/storage"
)

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// System variable names.
const (
	VarDate     = "date"
	VarTime     = "time"
	VarDateTime = "datetime"
	VarUUID     = "uuid"
	VarSlug     = "slug"
	VarTitle    = "title"
)

// Variable is a placeholder found in a template.
type Variable struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// Info describes one available template.
type Info struct {
	Name        string     `json:"name"`
	Path        string     `json:"path"`
	Variables   []Variable `json:"variables"`
	Description string     `json:"description"`
}

// Engine reads templates from a directory inside the vault.
type Engine struct {
	store storage.Provider
	dir   string
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source for the date and time variables.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an Engine for templates under dir (vault-relative).
func NewEngine(store storage.Provider, dir string, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		dir:   path.Clean(strings.Trim(dir, "/")),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dir returns the vault-relative template directory.
func (e *Engine) Dir() string {
	return e.dir
}

// List returns the templates directly inside the template directory, sorted
// by name. A missing directory yields an empty list.
func (e *Engine) List(ctx context.Context) ([]Info, error) {
	entries, err := e.store.Entries(e.dir, storage.DocumentExt)
	if err != nil {
		return nil, err
	}
	out := []Info{}
	for _, ent := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if ent.Type != models.EntryFile || path.Dir(ent.Path) != e.dir || !strings.HasSuffix(ent.Path, storage.DocumentExt) {
			continue
		}
		data, err := e.store.Read(ent.Path)
		if err != nil {
			return nil, err
		}
		out = append(out, describe(ent.Path, string(data)))
	}
	return out, nil
}

func describe(p, content string) Info {
	info := Info{
		Name:      strings.TrimSuffix(path.Base(p), storage.DocumentExt),
		Path:      p,
		Variables: []Variable{},
	}
	seen := make(map[string]struct{})
	for _, m := range placeholderRe.FindAllStringSubmatch(content, -1) {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		info.Variables = append(info.Variables, Variable{Name: m[1], Required: true})
	}
	if fm, _ := parser.Frontmatter(content); fm != nil {
		if s, ok := fm["description"].(string); ok {
			info.Description = strings.TrimSpace(s)
		}
	}
	return info
}

// Render fills the named template with vars. The date, time and datetime
// variables always reflect the current clock; uuid and slug are generated
// only when vars does not set them. Unknown placeholders are left as is.
func (e *Engine) Render(ctx context.Context, name string, vars map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: template name %q", apperr.ErrInvalidArgument, name)
	}
	p := path.Join(e.dir, strings.TrimSuffix(name, storage.DocumentExt)+storage.DocumentExt)
	data, err := e.store.Read(p)
	if err != nil {
		return "", fmt.Errorf("template %s: %w", name, err)
	}
	return Expand(string(data), e.variables(vars)), nil
}

func (e *Engine) variables(vars map[string]any) map[string]string {
	all := make(map[string]string, len(vars)+5)
	for k, v := range vars {
		all[k] = fmt.Sprint(v)
	}
	now := e.now()
	all[VarDate] = now.Format("2006-01-02")
	all[VarTime] = now.Format("15:04:05")
	all[VarDateTime] = now.Format("2006-01-02 15:04:05")
	if _, ok := all[VarUUID]; !ok {
		all[VarUUID] = uuid.NewString()
	}
	if _, ok := all[VarSlug]; !ok {
		if title, ok := all[VarTitle]; ok {
			all[VarSlug] = slug.Make(title)
		}
	}
	return all
}

// Expand replaces every {{name}} placeholder that has a value in vars.
func Expand(content string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(content, func(m string) string {
		if v, ok := vars[m[2:len(m)-2]]; ok {
			return v
		}
		return m
	})
}
