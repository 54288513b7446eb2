package parser

import (
	"path"
	"regexp"
	"strings"

	"github.com/starford/vaultlink/internal/models"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[([^\]|]+)(\|[^\]]+)?\]\]`)
	mdLinkRe   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// ParseLinks returns every outbound link of content in line order. Label
// links with a scheme (://) are dropped unless they point at a .md file.
func ParseLinks(content string) []models.Link {
	var out []models.Link
	for i, line := range strings.Split(content, "\n") {
		out = append(out, parseLine(line, i+1)...)
	}
	return out
}

func parseLine(line string, lineNum int) []models.Link {
	var out []models.Link

	for _, m := range wikilinkRe.FindAllStringSubmatch(line, -1) {
		target := strings.TrimSpace(m[1])
		if target == "" {
			continue
		}
		label := path.Base(target)
		if m[2] != "" {
			label = m[2][1:]
		}
		out = append(out, models.Link{
			Kind:   models.LinkWiki,
			Target: target,
			Label:  label,
			Line:   lineNum,
			Raw:    m[0],
		})
	}

	for _, m := range mdLinkRe.FindAllStringSubmatch(line, -1) {
		target := strings.TrimSpace(m[2])
		if !IsInternalTarget(target) {
			continue
		}
		out = append(out, models.Link{
			Kind:   models.LinkMarkdown,
			Target: target,
			Label:  m[1],
			Line:   lineNum,
			Raw:    m[0],
		})
	}
	return out
}

// IsInternalTarget reports whether a label-link target refers into the vault.
func IsInternalTarget(target string) bool {
	if target == "" {
		return false
	}
	return !strings.Contains(target, "://") || strings.HasSuffix(target, ".md")
}
