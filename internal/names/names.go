// Package names splits free-text author strings into structured names.
//
// Parsing is total: it never returns an error, because upstream catalog data
// quality is uncontrolled. Unparseable input degrades to a single author
// whose family name is the cleaned input.
package names

import (
	"regexp"
	"strings"

	"github.com/atjproject/lawcat/internal/work"
)

// conjunctions separate the last author from the others ("A och B").
var conjunctions = map[string]bool{
	"och": true,
	"and": true,
	"&":   true,
}

// listSeparators is applied before splitting on commas.
var listSeparators = strings.NewReplacer(";", ",", "&", " & ")

// lifeDates matches trailing life dates in library authority form,
// e.g. ", 1909-1999" or ", 1946-".
var lifeDates = regexp.MustCompile(`,\s*\d{4}-(\d{4})?\.*\s*$`)

// Parse splits an author string such as "Hugo Tiberg och Dan Lennhammer"
// into ordered names. Source order is preserved. For each name the trailing
// token is the family name and all preceding tokens are given names; a
// single token becomes the family name with an empty given name.
//
// A blank input yields nil. Any other input yields at least one author.
func Parse(raw string) []work.Author {
	cleaned := strings.Join(strings.Fields(raw), " ")
	if cleaned == "" {
		return nil
	}

	var authors []work.Author
	for _, segment := range strings.Split(listSeparators.Replace(cleaned), ",") {
		var tokens []string
		for _, tok := range strings.Fields(segment) {
			if conjunctions[strings.ToLower(tok)] {
				authors = appendName(authors, tokens)
				tokens = nil
				continue
			}
			tokens = append(tokens, tok)
		}
		authors = appendName(authors, tokens)
	}

	if len(authors) == 0 {
		// Only separators and conjunctions; keep the text rather than drop it.
		return []work.Author{{Family: cleaned}}
	}
	return authors
}

// ParseOne splits a single written name ("Given Given Family").
func ParseOne(name string) work.Author {
	tokens := strings.Fields(name)
	switch len(tokens) {
	case 0:
		return work.Author{}
	case 1:
		return work.Author{Family: tokens[0]}
	default:
		return work.Author{
			Given:  strings.Join(tokens[:len(tokens)-1], " "),
			Family: tokens[len(tokens)-1],
		}
	}
}

// ParseInverted parses a library authority heading such as
// "Rodhe, Knut, 1909-1999" into {Knut, Rodhe}. Headings without a comma are
// parsed as a written name.
func ParseInverted(heading string) work.Author {
	clean := strings.TrimSpace(lifeDates.ReplaceAllString(strings.TrimSpace(heading), ""))
	family, given, found := strings.Cut(clean, ",")
	if !found {
		return ParseOne(clean)
	}
	given = strings.TrimSpace(given)
	// Drop any further qualifiers after a second comma.
	if idx := strings.Index(given, ","); idx >= 0 {
		given = strings.TrimSpace(given[:idx])
	}
	return work.Author{
		Given:  given,
		Family: strings.TrimSpace(family),
	}
}

// Families returns the family names of the given authors, in order,
// skipping authors without one.
func Families(authors []work.Author) []string {
	out := make([]string, 0, len(authors))
	for _, a := range authors {
		if a.Family != "" {
			out = append(out, a.Family)
		}
	}
	return out
}

func appendName(authors []work.Author, tokens []string) []work.Author {
	if len(tokens) == 0 {
		return authors
	}
	return append(authors, ParseOne(strings.Join(tokens, " ")))
}
