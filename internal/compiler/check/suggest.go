package check

import "fmt"

// maxSuggestDistance bounds how far a candidate may be from the unknown
// name before it stops being a useful suggestion.
const maxSuggestDistance = 3

// suggest returns a "did you mean" hint for an unknown name, or "" when
// no candidate is close enough.
func suggest(name string, candidates []string) string {
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, cand := range candidates {
		if cand == name {
			continue
		}
		d := levenshtein(name, cand)
		if d < bestDist {
			bestDist = d
			best = cand
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf("did you mean '%s'?", best)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
