// Package text holds the query and phrase normalization shared by every
// lexical matcher, so that rule tables and queries compare in one form.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize case-folds s, strips combining diacritics and collapses runs of
// whitespace to a single space. "Crédit d'Impôt" becomes "credit d'impot".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// NormalizeAll normalizes every phrase and drops the ones that become empty.
func NormalizeAll(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if n := Normalize(p); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// ContainsAny reports whether normalized contains at least one of the
// already-normalized phrases, returning the first one found.
func ContainsAny(normalized string, phrases []string) (string, bool) {
	for _, p := range phrases {
		if p != "" && strings.Contains(normalized, p) {
			return p, true
		}
	}
	return "", false
}
