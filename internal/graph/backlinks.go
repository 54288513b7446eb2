package graph

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/vaultlink/internal/apperr"
	"github.com/starford/vaultlink/internal/models"
	"github.com/starford/vaultlink/internal/storage"
)

// contextWidth is the character budget of a backlink context snippet.
const contextWidth = 50

// Metrics summarizes how referenced a note is.
type Metrics struct {
	Popularity int     `json:"popularity"`
	Centrality float64 `json:"centrality"`
}

// BacklinkReport is the result of analyzing the inbound links of one note.
type BacklinkReport struct {
	TargetNote   string            `json:"targetNote"`
	Backlinks    []models.Backlink `json:"backlinks"`
	RelatedNotes []string          `json:"relatedNotes"`
	Metrics      Metrics           `json:"metrics"`
}

// AnalyzeBacklinks finds every link in other documents that points at
// target. Popularity is the number of matching links; centrality divides it
// by the number of documents in the vault.
func (e *Engine) AnalyzeBacklinks(ctx context.Context, target string) (*BacklinkReport, error) {
	abs, err := e.store.Resolve(target)
	if err != nil {
		return nil, err
	}
	if !e.store.Exists(target) {
		return nil, fmt.Errorf("target note %s: %w", target, apperr.ErrNotFound)
	}

	res, err := e.scan(ctx, "analyze_backlinks")
	if err != nil {
		return nil, err
	}

	m := newTargetMatcher(target)
	report := &BacklinkReport{
		TargetNote:   target,
		Backlinks:    []models.Backlink{},
		RelatedNotes: []string{},
	}
	related := make(map[string]struct{})

	for _, doc := range res.Documents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if docAbs, err := e.store.Resolve(doc.Path); err == nil && docAbs == abs {
			continue
		}
		var lines []string
		for _, l := range e.parser.Parse(doc.Content).Links {
			if !m.matches(doc.Path, l) {
				continue
			}
			if lines == nil {
				lines = strings.Split(doc.Content, "\n")
			}
			report.Backlinks = append(report.Backlinks, models.Backlink{
				SourceFile: doc.Path,
				Context:    extractContext(lineAt(lines, l.Line), contextWidth),
				LinkType:   l.Kind,
				Line:       l.Line,
			})
			if _, ok := related[doc.Path]; !ok {
				related[doc.Path] = struct{}{}
				report.RelatedNotes = append(report.RelatedNotes, doc.Path)
			}
		}
	}

	report.Metrics.Popularity = len(report.Backlinks)
	if n := len(res.Documents); n > 0 {
		report.Metrics.Centrality = float64(report.Metrics.Popularity) / float64(n)
	}
	return report, nil
}

// targetMatcher decides whether a link refers to the analyzed note.
type targetMatcher struct {
	raw   string // as given by the caller
	clean string // slash separated, cleaned
	noExt string
	base  string
}

func newTargetMatcher(target string) targetMatcher {
	clean := path.Clean(filepath.ToSlash(target))
	return targetMatcher{
		raw:   target,
		clean: clean,
		noExt: strings.TrimSuffix(clean, storage.DocumentExt),
		base:  baseName(clean),
	}
}

// matches compares wikilinks by base name or path with or without the
// extension. Label links without a directory compare by base name; those
// with one must resolve to the note's path.
func (m targetMatcher) matches(source string, l models.Link) bool {
	if l.Kind == models.LinkWiki {
		t := l.Target
		return t == m.base || t == m.raw || t == m.clean || t == m.noExt
	}
	t := strings.TrimSuffix(unescape(l.Target), storage.DocumentExt)
	if !strings.Contains(t, "/") {
		return t == m.base
	}
	resolved := strings.TrimSuffix(linkPath(source, l), storage.DocumentExt)
	return resolved == m.noExt
}

func lineAt(lines []string, n int) string {
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// extractContext returns a window of width runes centered on line, with
// "..." marking each truncated edge. Short lines are returned whole.
func extractContext(line string, width int) string {
	r := []rune(line)
	n := len(r)
	start := max(0, n/2-width/2)
	end := min(n, start+width)

	snippet := string(r[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < n {
		snippet += "..."
	}
	return strings.TrimSpace(snippet)
}
