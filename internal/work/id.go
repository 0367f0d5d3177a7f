package work

import (
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/crypto/blake2b"
)

// idPrefix marks identifiers derived from content rather than source position.
const idPrefix = "h-"

// DeriveID builds a stable identifier from title and raw author text for
// works whose source catalog position is unknown. Case, punctuation and
// whitespace differences do not change the result.
func DeriveID(title, authorsRaw string) string {
	key := normalizeKey(title) + "|" + normalizeKey(authorsRaw)
	sum := blake2b.Sum256([]byte(key))
	return idPrefix + hex.EncodeToString(sum[:8])
}

func normalizeKey(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}
