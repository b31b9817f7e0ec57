package schema

import (
	"strings"

	"github.com/xrash/smetrics"
)

// Similarity returns a case-insensitive score in [0,1] for two column names:
// 2*M/T where M is the length of the longest common subsequence and T the
// total length of both names. Wagner-Fischer with unit insert/delete cost and
// a substitution cost of 2 yields exactly T-2*M.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	distance := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return float64(total-distance) / float64(total)
}

// BestMatch returns the candidate with the highest Similarity to name and its
// score. Ties keep the earliest candidate.
func BestMatch(name string, candidates []string) (string, float64) {
	best, bestScore := "", -1.0
	for _, candidate := range candidates {
		score := Similarity(name, candidate)
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	if best == "" {
		return "", 0
	}
	return best, bestScore
}
