// Package textmatch implements the local fuzzy text comparison used when no
// semantic classifier result is available.
package textmatch

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// SimilarityThreshold is the ratio a pair must exceed to be considered similar.
const SimilarityThreshold = 0.4

// Ratio returns the Ratcliff/Obershelp similarity (2*M/T) of a and b,
// ignoring case. Two empty strings are identical.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

// Similar reports whether Ratio(a, b) exceeds SimilarityThreshold.
func Similar(a, b string) bool {
	return Ratio(a, b) > SimilarityThreshold
}

func runes(s string) []string {
	lowered := []rune(strings.ToLower(s))
	out := make([]string, len(lowered))
	for i, r := range lowered {
		out[i] = string(r)
	}
	return out
}
