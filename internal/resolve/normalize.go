// Package resolve maps perceived form fields to configured answers. Every
// function in it is pure and deterministic: identical inputs produce
// bit-identical results, and nothing here performs I/O or inference.
package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks so accented labels match their
// plain-ASCII patterns ("résumé" becomes "resume").
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fillerPhrases are removed from option labels before matching. Dropdown
// options frequently carry placeholder scaffolding that carries no meaning.
var fillerPhrases = []string{"please select", "select one", "choose", "pick"}

// Normalize canonicalizes raw label or question text for pattern matching:
// diacritic folding, lowercasing, punctuation stripping, whitespace
// collapsing. Total function; empty in, empty out.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	if folded, _, err := transform.String(foldTransformer, text); err == nil {
		text = folded
	}
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeOption canonicalizes a dropdown option label: Normalize plus
// removal of filler phrases.
func NormalizeOption(text string) string {
	out := Normalize(text)
	for _, filler := range fillerPhrases {
		out = strings.ReplaceAll(out, filler, "")
	}
	return strings.Join(strings.Fields(out), " ")
}

// containsAll reports whether every keyword occurs in the normalized text.
func containsAll(normalized string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(normalized, kw) {
			return false
		}
	}
	return true
}
