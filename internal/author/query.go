// Package author parses author search queries and matches them against the
// parsed author names of a work.
package author

import (
	"regexp"
	"strings"

	"github.com/atjproject/lawcat/internal/work"
)

// Query represents a parsed author search query.
type Query struct {
	Given  string // Given name(s), may be empty
	Family string // Family name (required)
}

// ParseQuery parses an author search string into a structured Query.
//
// Supported formats:
//   - "Rodhe"            → family="Rodhe"
//   - "Knut Rodhe"       → given="Knut", family="Rodhe"
//   - "Rodhe, Knut"      → given="Knut", family="Rodhe"
//
// Names are trimmed but case is preserved (matching is case-insensitive).
func ParseQuery(input string) Query {
	input = strings.TrimSpace(input)
	if input == "" {
		return Query{}
	}

	if family, given, ok := strings.Cut(input, ","); ok && strings.TrimSpace(family) != "" {
		return Query{Given: strings.Join(strings.Fields(given), " "), Family: strings.TrimSpace(family)}
	}

	parts := strings.Fields(input)
	if len(parts) == 1 {
		return Query{Family: parts[0]}
	}
	return Query{
		Given:  strings.Join(parts[:len(parts)-1], " "),
		Family: parts[len(parts)-1],
	}
}

var querySeparator = regexp.MustCompile(`\s*(?:;|&|\soch\s)\s*`)

// ParseQueries splits a query naming several authors ("Tiberg och
// Lennhammer", "Tiberg; Lennhammer") into one Query per author.
func ParseQueries(input string) []Query {
	var out []Query
	for _, part := range querySeparator.Split(input, -1) {
		if q := ParseQuery(part); q.Family != "" {
			out = append(out, q)
		}
	}
	return out
}

// Matches checks if the query matches a given author.
//
// With a given name the family name must match exactly and the given name
// by prefix, so "Dan Lenn" does not match "Dan Lennhammer" but "D
// Lennhammer" does. A bare family name matches as a prefix.
func (q Query) Matches(a work.Author) bool {
	if q.Given == "" {
		return hasFoldPrefix(a.Family, q.Family)
	}
	if !strings.EqualFold(q.Family, a.Family) {
		return false
	}
	return hasFoldPrefix(a.Given, q.Given)
}

// MatchesAny checks if the query matches any author in the list.
func (q Query) MatchesAny(authors []work.Author) bool {
	for _, a := range authors {
		if q.Matches(a) {
			return true
		}
	}
	return false
}

// AllMatch checks if all queries match at least one author each.
func AllMatch(queries []Query, authors []work.Author) bool {
	for _, q := range queries {
		if !q.MatchesAny(authors) {
			return false
		}
	}
	return true
}

func hasFoldPrefix(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}
