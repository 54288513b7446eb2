// Package parser extracts front matter, links, and tags from Markdown content.
//
// Extraction is pattern based; callers depend on the Parser interface so the
// regex implementation can be swapped without touching them.
package parser

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/vaultlink/internal/models"
)

// frontmatterRe matches a metadata block that opens the document.
var frontmatterRe = regexp.MustCompile(`\A---[ \t\r]*\n((?s:.*?))\n---`)

// Result holds the output of parsing one document.
type Result struct {
	Frontmatter map[string]any
	Tags        []string
	Links       []models.Link
}

// Parser turns raw document content into tags, links, and metadata fields.
type Parser interface {
	Parse(content string) *Result
}

// Pattern is the regex-backed Parser.
type Pattern struct{}

var _ Parser = Pattern{}

// Parse extracts front matter, tags, and links. It never fails: malformed
// front matter yields a nil map.
func (Pattern) Parse(content string) *Result {
	fm, _ := Frontmatter(content)
	return &Result{
		Frontmatter: fm,
		Tags:        ExtractTags(content),
		Links:       ParseLinks(content),
	}
}

// frontmatterBlock returns the raw text between the leading --- delimiters
// and the byte range of that text within content.
func frontmatterBlock(content string) (block string, start, end int, ok bool) {
	loc := frontmatterRe.FindStringSubmatchIndex(content)
	if loc == nil {
		return "", 0, 0, false
	}
	return content[loc[2]:loc[3]], loc[2], loc[3], true
}

// Frontmatter decodes the leading metadata block as YAML. The second return
// is the raw block text; both are empty when there is no block.
func Frontmatter(content string) (map[string]any, string) {
	block, _, _, ok := frontmatterBlock(content)
	if !ok {
		return nil, ""
	}
	var fm map[string]any
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return nil, block
	}
	return fm, block
}

// frontmatterLines returns the number of lines occupied by the metadata block
// including both delimiters, or 0 when there is none.
func frontmatterLines(content string) int {
	_, _, end, ok := frontmatterBlock(content)
	if !ok {
		return 0
	}
	// The block ends just before "\n---".
	return strings.Count(content[:end], "\n") + 2
}
