package parser

import (
	"regexp"
	"strings"
)

var (
	inlineTagRe = regexp.MustCompile(`#[\w/-]+`)
	validTagRe  = regexp.MustCompile(`^#[\w/-]+$`)
	tagListRe   = regexp.MustCompile(`tags:\s*\[(.*?)\]`)
)

// NormalizeTag prefixes t with '#' when missing.
func NormalizeTag(t string) string {
	t = strings.TrimSpace(t)
	if strings.HasPrefix(t, "#") {
		return t
	}
	return "#" + t
}

// ValidTag reports whether t, once normalized, is a single inline tag token.
func ValidTag(t string) bool {
	return validTagRe.MatchString(NormalizeTag(t))
}

// ExtractTags returns the distinct '#'-prefixed tags of content, in first-seen
// order: inline hash words anywhere in the text, then entries of a single-line
// "tags: [a, b]" list in the front matter.
func ExtractTags(content string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	for _, m := range inlineTagRe.FindAllString(content, -1) {
		add(m)
	}
	for _, t := range frontmatterTags(content) {
		add(NormalizeTag(t))
	}
	return out
}

// frontmatterTags returns the raw entries of the front-matter tag list with
// quotes and surrounding space removed.
func frontmatterTags(content string) []string {
	block, _, _, ok := frontmatterBlock(content)
	if !ok {
		return nil
	}
	m := tagListRe.FindStringSubmatch(block)
	if m == nil {
		return nil
	}
	var out []string
	for _, entry := range strings.Split(m[1], ",") {
		entry = strings.Trim(strings.TrimSpace(entry), `"'`)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

// RenameTag rewrites oldTag to newTag in content. Inline occurrences are
// replaced only as whole tokens (followed by whitespace or end of line), so
// renaming #proj leaves #projection alone. Entries of the front-matter tag
// list equal to the old name are rewritten with their quoting preserved.
// The boolean reports whether anything changed.
func RenameTag(content, oldTag, newTag string) (string, bool) {
	oldTag, newTag = NormalizeTag(oldTag), NormalizeTag(newTag)
	if oldTag == "#" || newTag == "#" || oldTag == newTag {
		return content, false
	}
	changed := false

	if block, start, end, ok := frontmatterBlock(content); ok {
		if updated, n := renameInTagList(block, oldTag, newTag); n {
			content = content[:start] + updated + content[end:]
			changed = true
		}
	}

	inlineRe := regexp.MustCompile(`(?m)` + regexp.QuoteMeta(oldTag) + `(\s|$)`)
	if inlineRe.MatchString(content) {
		content = inlineRe.ReplaceAllStringFunc(content, func(m string) string {
			return newTag + m[len(oldTag):]
		})
		changed = true
	}
	return content, changed
}

func renameInTagList(block, oldTag, newTag string) (string, bool) {
	loc := tagListRe.FindStringSubmatchIndex(block)
	if loc == nil {
		return block, false
	}
	list := block[loc[2]:loc[3]]
	oldBare, newBare := oldTag[1:], newTag[1:]

	entries := strings.Split(list, ",")
	changed := false
	for i, entry := range entries {
		trimmed := strings.TrimSpace(entry)
		quote := ""
		if len(trimmed) >= 2 && (trimmed[0] == '"' || trimmed[0] == '\'') && trimmed[len(trimmed)-1] == trimmed[0] {
			quote = trimmed[:1]
		}
		inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, quote), quote)

		var repl string
		switch inner {
		case oldBare:
			repl = newBare
		case oldTag:
			repl = newTag
		default:
			continue
		}
		lead := entry[:strings.Index(entry, trimmed)]
		trail := entry[len(lead)+len(trimmed):]
		entries[i] = lead + quote + repl + quote + trail
		changed = true
	}
	if !changed {
		return block, false
	}
	return block[:loc[2]] + strings.Join(entries, ",") + block[loc[3]:], true
}
