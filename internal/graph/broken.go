package graph

import (
	"context"

	"github.com/starford/vaultlink/internal/models"
	"github.com/starford/vaultlink/internal/similarity"
	"github.com/starford/vaultlink/internal/storage"
)

// Suggestion tuning for broken-link repair.
const (
	SuggestionThreshold = 0.3
	SuggestionLimit     = 5
)

// BrokenLink is a reference whose target resolves to no file.
type BrokenLink struct {
	SourceFile  string          `json:"sourceFile"`
	LinkText    string          `json:"linkText"`
	TargetPath  string          `json:"targetPath"`
	LineNumber  int             `json:"lineNumber"`
	LinkType    models.LinkKind `json:"linkType"`
	Suggestions []string        `json:"suggestions"`
}

// BrokenLinkReport lists every broken link in the vault.
type BrokenLinkReport struct {
	BrokenLinks []BrokenLink `json:"brokenLinks"`
	TotalCount  int          `json:"totalCount"`
}

// FindBrokenLinks checks every link of every document. A link is broken when
// neither <target>.md nor <target> exists. Each broken link carries up to
// five similarly named notes as repair suggestions.
func (e *Engine) FindBrokenLinks(ctx context.Context) (*BrokenLinkReport, error) {
	res, err := e.scan(ctx, "find_broken_links")
	if err != nil {
		return nil, err
	}

	names := knownNames(res.Documents)
	report := &BrokenLinkReport{BrokenLinks: []BrokenLink{}}

	for _, doc := range res.Documents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, l := range e.parser.Parse(doc.Content).Links {
			if e.resolves(doc.Path, l) {
				continue
			}
			report.BrokenLinks = append(report.BrokenLinks, BrokenLink{
				SourceFile:  doc.Path,
				LinkText:    l.Label,
				TargetPath:  l.Target,
				LineNumber:  l.Line,
				LinkType:    l.Kind,
				Suggestions: similarity.Names(similarity.Rank(baseName(unescape(l.Target)), names, SuggestionThreshold, SuggestionLimit)),
			})
		}
	}
	report.TotalCount = len(report.BrokenLinks)
	return report, nil
}

// resolves reports whether either candidate path of l exists.
func (e *Engine) resolves(source string, l models.Link) bool {
	p := linkPath(source, l)
	return e.store.Exists(p+storage.DocumentExt) || e.store.Exists(p)
}

// knownNames returns the distinct document base names in scan order.
func knownNames(docs []models.Document) []string {
	seen := make(map[string]struct{}, len(docs))
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		n := baseName(d.Path)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
