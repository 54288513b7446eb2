package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxDescription = 100

var descriptionRe = regexp.MustCompile(`description:\s*["']?([^"'\n]+)["']?`)

// Description returns a one-line summary of content: the front-matter
// description field when present, otherwise the first non-empty line that
// is neither a heading nor a block delimiter, cut to 100 characters.
func Description(content string) string {
	fm, block := Frontmatter(content)
	if s, ok := fm["description"].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	if fm == nil && block != "" {
		if m := descriptionRe.FindStringSubmatch(block); m != nil {
			return strings.TrimSpace(m[1])
		}
	}

	lines := strings.Split(content, "\n")
	for _, line := range lines[min(frontmatterLines(content), len(lines)):] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "---") {
			continue
		}
		return truncate(trimmed)
	}
	return ""
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxDescription {
		return s
	}
	r := []rune(s)
	return string(r[:maxDescription-3]) + "..."
}
