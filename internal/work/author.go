package work

import "strings"

// Author is one parsed author of a work. Order within a record is
// citation-significant: the first author is the primary author.
type Author struct {
	Given  string `json:"given"`  // Given name(s), may be empty
	Family string `json:"family"` // Family name (last token of the written name)
}

// Full renders the author as "Given Family", or just the family name when
// no given name is known.
func (a Author) Full() string {
	if a.Given == "" {
		return a.Family
	}
	if a.Family == "" {
		return a.Given
	}
	return a.Given + " " + a.Family
}

// IsZero reports whether the author carries no name at all.
func (a Author) IsZero() bool {
	return strings.TrimSpace(a.Given) == "" && strings.TrimSpace(a.Family) == ""
}
