package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds a phrase to the form used for matching: NFC, lowercased, trimmed,
// inner whitespace collapsed to single spaces.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	// Casers carry state, so one is built per call.
	s = cases.Lower(language.Und).String(s)
	return strings.Join(strings.Fields(s), " ")
}
