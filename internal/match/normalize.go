package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics decomposes characters and drops combining marks, so that
// "Obligationsrätt" and "Obligationsratt" compare equal.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize prepares a string for comparison: diacritics removed, lower
// case, punctuation stripped and whitespace collapsed.
func Normalize(s string) string {
	folded, _, err := transform.String(foldDiacritics, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// BareTitle drops a trailing statement of responsibility, as in
// "Obligationsrätt / Knut Rodhe".
func BareTitle(s string) string {
	if i := strings.Index(s, " / "); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSuffix(strings.TrimSpace(s), " /")
}
