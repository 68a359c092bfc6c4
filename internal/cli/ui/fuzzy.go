package ui

import (
	"sort"
	"strings"
)

// MaxDistance is the largest edit distance still offered as a suggestion
const MaxDistance = 3

// SimilarIdentities returns up to limit class identities close to target.
// Identities are compared in full and by their type name, ignoring case, so
// "order" finds "example.com/shop.Order".
func SimilarIdentities(target string, identities []string, limit int) []string {
	type match struct {
		id       string
		distance int
	}

	target = strings.ToLower(target)
	var matches []match
	for _, id := range identities {
		lower := strings.ToLower(id)
		d := Levenshtein(target, lower)
		if i := strings.LastIndex(lower, "."); i >= 0 {
			if short := Levenshtein(target, lower[i+1:]); short < d {
				d = short
			}
		}
		if d <= MaxDistance {
			matches = append(matches, match{id, d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].distance < matches[j].distance })

	out := make([]string, 0, limit)
	for i := 0; i < len(matches) && i < limit; i++ {
		out = append(out, matches[i].id)
	}
	return out
}

// Levenshtein returns the edit distance between a and b, counted in runes
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
