package errz

import (
	"sort"
	"strings"
)

// MaxSuggestions is the maximum number of names DidYouMean offers.
const MaxSuggestions = 3

// Suggest returns the candidates closest to target by edit distance,
// closest first. Short targets only match near-identical names.
func Suggest(target string, candidates []string) []string {
	if target == "" {
		return nil
	}
	limit := 3
	switch {
	case len(target) <= 3:
		limit = 1
	case len(target) <= 5:
		limit = 2
	}

	type match struct {
		name     string
		distance int
	}
	var matches []match
	for _, candidate := range candidates {
		if candidate == "" || candidate == target {
			continue
		}
		if d := editDistance(strings.ToLower(target), strings.ToLower(candidate)); d <= limit {
			matches = append(matches, match{candidate, d})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].name < matches[j].name
	})
	if len(matches) > MaxSuggestions {
		matches = matches[:MaxSuggestions]
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.name
	}
	return names
}

// DidYouMean formats the suggestions for target as a sentence, or returns
// an empty string when nothing is close.
func DidYouMean(target string, candidates []string) string {
	names := Suggest(target, candidates)
	switch len(names) {
	case 0:
		return ""
	case 1:
		return "did you mean '" + names[0] + "'?"
	default:
		return "did you mean one of '" + strings.Join(names, "', '") + "'?"
	}
}

// editDistance is the Levenshtein distance between a and b.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(ra)]
}
