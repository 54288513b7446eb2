// Package graph implements the vault-wide analyses over the implicit
// link/tag graph: tag listing and renaming, broken-link detection,
// backlink analysis, and map-of-contents generation.
//
// Every call performs a fresh scan of the vault; nothing is cached.
package graph

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/starford/vaultlink/internal/models"
	"github.com/starford/vaultlink/internal/parser"
	"github.com/starford/vaultlink/internal/storage"
)

// Engine runs graph analyses against one vault.
type Engine struct {
	store    storage.Provider
	parser   parser.Parser
	logger   *slog.Logger
	now      func() time.Time
	notifier Notifier
}

// Notifier is told about every vault write an Engine performs.
type Notifier interface {
	PublishChange(kind string, paths ...string)
}

type nopNotifier struct{}

func (nopNotifier) PublishChange(string, ...string) {}

// Option configures an Engine.
type Option func(*Engine)

// WithParser replaces the default pattern parser.
func WithParser(p parser.Parser) Option {
	return func(e *Engine) {
		e.parser = p
	}
}

// WithLogger sets the logger used for scan and write diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock overrides the time source used for generated content.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithNotifier sets the receiver of change notifications.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		e.notifier = n
	}
}

// NewEngine creates an Engine over store.
func NewEngine(store storage.Provider, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		parser:   parser.Pattern{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
		notifier: nopNotifier{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// scan reads the vault and logs how many entries were skipped.
func (e *Engine) scan(ctx context.Context, op string) (storage.ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.ScanResult{}, err
	}
	res := e.store.Scan()
	e.logger.Debug("scan complete",
		slog.String("op", op),
		slog.Int("documents", len(res.Documents)),
		slog.Int("skipped", res.Skipped))
	return res, nil
}

// baseName returns the file name of p without the document extension.
func baseName(p string) string {
	return strings.TrimSuffix(path.Base(p), storage.DocumentExt)
}

// linkPath returns the vault-relative path a link points at, before any
// extension is added. Wikilinks are vault-root relative; label links are
// relative to the source document unless they start with '/'.
func linkPath(source string, l models.Link) string {
	if l.Kind == models.LinkWiki {
		return l.Target
	}
	target := unescape(l.Target)
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(source), target)
}

func unescape(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}
