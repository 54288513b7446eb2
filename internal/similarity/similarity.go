// Package similarity scores note names by normalized edit distance.
package similarity

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

// Candidate is a name paired with its similarity to a query.
type Candidate struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Score returns 1 - distance/max(len) for the lower-cased inputs, where
// distance is the unit-cost Levenshtein distance over runes. Two empty
// strings are identical (1.0); an empty string against a non-empty one is 0.
func Score(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	d := levenshtein.Distance(a, b, nil)
	return 1 - float64(d)/float64(longest)
}

// Rank scores target against every name, keeps candidates scoring strictly
// above threshold, and returns at most limit of them best first. Equal
// scores keep the order of names.
func Rank(target string, names []string, threshold float64, limit int) []Candidate {
	var out []Candidate
	for _, n := range names {
		if s := Score(target, n); s > threshold {
			out = append(out, Candidate{Name: n, Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Names returns just the names of cs.
func Names(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}
