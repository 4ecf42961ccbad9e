// Package voice turns transcribed speech into catalog actions.
//
// Resolution runs in two phases. An exact phase checks literal membership of the
// normalized text in each action's synonym set and returns the first hit in catalog
// order. Only when that fails does the fuzzy phase score the text against every
// synonym, keep the highest-scoring action (earliest wins on ties) and accept it if
// the score reaches the confidence threshold.
package voice

import (
	"strings"
	"unicode"

	"github.com/mouse-relay/internal/catalog"
)

// DefaultThreshold is the minimum fuzzy score that is allowed to actuate
const DefaultThreshold = 60

// Result is the outcome of a resolution. When Resolved is false, Action and Score
// describe the best rejected candidate and must not be acted upon.
type Result struct {
	Text     string
	Action   catalog.Action
	Score    int
	Exact    bool
	Resolved bool
}

// Resolver classifies free text against a catalog
type Resolver struct {
	catalog   *catalog.Catalog
	scorer    Similarity
	threshold int
}

// Option configures a Resolver
type Option func(*Resolver)

// WithScorer replaces the similarity scorer
func WithScorer(s Similarity) Option {
	return func(r *Resolver) {
		if s != nil {
			r.scorer = s
		}
	}
}

// WithThreshold sets the fuzzy acceptance threshold
func WithThreshold(threshold int) Option {
	return func(r *Resolver) {
		r.threshold = threshold
	}
}

// NewResolver creates a resolver over the given catalog
func NewResolver(c *catalog.Catalog, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:   c,
		scorer:    LevenshteinRatio,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Threshold returns the fuzzy acceptance threshold
func (r *Resolver) Threshold() int {
	return r.threshold
}

// Resolve classifies text. It is deterministic for a given catalog and scorer.
func (r *Resolver) Resolve(text string) Result {
	text = catalog.Normalize(text)
	res := Result{Text: text}
	if text == "" {
		return res
	}

	entries := r.catalog.Entries()

	for _, e := range entries {
		for _, phrase := range e.Synonyms {
			if phrase == text {
				res.Action = e.Action
				res.Score = 100
				res.Exact = true
				res.Resolved = true
				return res
			}
		}
	}

	folded := foldPunctuation(text)
	best := -1
	for _, e := range entries {
		score := r.bestScore(folded, e.Synonyms)
		if score > best {
			best = score
			res.Action = e.Action
		}
	}
	if best < 0 {
		return res
	}
	res.Score = best
	res.Resolved = best >= r.threshold
	return res
}

func (r *Resolver) bestScore(text string, phrases []string) int {
	best := -1
	for _, phrase := range phrases {
		if s := r.scorer.Score(text, foldPunctuation(phrase)); s > best {
			best = s
		}
	}
	return best
}

// foldPunctuation turns every rune that is not a letter, digit, mark or '_' into a
// space and collapses the result, so "Copy." scores like "copy" in the fuzzy phase
func foldPunctuation(s string) string {
	return strings.Join(strings.Fields(strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) || r == '_' {
			return r
		}
		return ' '
	}, s)), " ")
}
