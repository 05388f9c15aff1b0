package builtins

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DidYouMean renders a hint naming the closest candidate, or returns "".
func DidYouMean(name string, candidates []string) string {
	if best := ClosestMatch(name, candidates); best != "" {
		return fmt.Sprintf(" (did you mean '%s'?)", best)
	}
	return ""
}

// ClosestMatch picks the candidate nearest to name. Subsequence matches rank
// first; otherwise anything within two edits qualifies.
func ClosestMatch(name string, candidates []string) string {
	if name == "" || len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		if ranks[0].Target != name && ranks[0].Distance <= len(name) {
			return ranks[0].Target
		}
	}
	best, bestDistance := "", 3
	for _, candidate := range candidates {
		if candidate == name {
			continue
		}
		d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(candidate))
		if d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best
}
