package voice

import (
	"math"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity scores how alike two normalized phrases are, from 0 (unrelated) to 100 (identical)
type Similarity interface {
	Score(a, b string) int
}

// ScorerFunc adapts a plain function to Similarity
type ScorerFunc func(a, b string) int

// Score calls f(a, b)
func (f ScorerFunc) Score(a, b string) int {
	return f(a, b)
}

// LevenshteinRatio is the default scorer: one minus the rune edit distance over the
// longer phrase length, as a rounded percentage.
var LevenshteinRatio = ScorerFunc(levenshteinRatio)

func levenshteinRatio(a, b string) int {
	if a == b {
		return 100
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * float64(longest-d) / float64(longest)))
}
