// Package citation renders court-style long-form and short-form citations.
//
// The long form follows the Swedish Supreme Court (HD) reference style:
//
//	Knut Rodhe, Obligationsrätt, 1956
//	Hugo Tiberg och Dan Lennhammer, Skuldebrev, växel och check, 7 uppl. 1995
//
// Both forms are pure functions of authors, title, edition and year. The
// work type is never rendered.
package citation

import (
	"strconv"
	"strings"

	"github.com/atjproject/lawcat/internal/work"
)

const (
	// Conjunction joins the last author to the others.
	Conjunction = "och"

	// EditionSuffix follows the edition number ("7 uppl.").
	EditionSuffix = "uppl."

	clauseSeparator = ", "
)

// Citation holds both rendered forms.
type Citation struct {
	Long  string `json:"long"`
	Short string `json:"short"`
}

// Format renders the long and short citations for rec. It fails with a
// *MissingFieldError when the title or year is absent.
func Format(rec work.Record) (Citation, error) {
	title := rec.Title
	if strings.TrimSpace(title) == "" {
		return Citation{}, &MissingFieldError{RecordID: rec.ID, Field: "title"}
	}
	if rec.Year <= 0 {
		return Citation{}, &MissingFieldError{RecordID: rec.ID, Field: "year"}
	}

	var clauses []string
	if a := AuthorClause(rec.Authors); a != "" {
		clauses = append(clauses, a)
	}
	clauses = append(clauses, title, editionYear(rec.Edition, rec.Year))

	return Citation{
		Long:  strings.Join(clauses, clauseSeparator),
		Short: shortForm(rec.Authors, title),
	}, nil
}

// Apply recomputes the derived citation fields of rec. On failure the
// citations are cleared and CitationError records why; the record itself
// is kept.
func Apply(rec work.Record) work.Record {
	out := rec.Clone()
	c, err := Format(rec)
	if err != nil {
		out.CitationLong = ""
		out.CitationShort = ""
		out.CitationError = err.Error()
		return out
	}
	out.CitationLong = c.Long
	out.CitationShort = c.Short
	out.CitationError = ""
	return out
}

// AuthorClause joins full author names: "A", "A och B", "A, B och C".
func AuthorClause(authors []work.Author) string {
	var full []string
	for _, a := range authors {
		if n := strings.TrimSpace(a.Full()); n != "" {
			full = append(full, n)
		}
	}
	switch len(full) {
	case 0:
		return ""
	case 1:
		return full[0]
	default:
		return strings.Join(full[:len(full)-1], clauseSeparator) + " " + Conjunction + " " + full[len(full)-1]
	}
}

// editionYear renders "7 uppl. 1995", or just the year for a first or
// unstated edition.
func editionYear(edition, year int) string {
	y := strconv.Itoa(year)
	if edition < 2 {
		return y
	}
	return strconv.Itoa(edition) + " " + EditionSuffix + " " + y
}

// shortForm renders "Family, Title" for the primary author only.
func shortForm(authors []work.Author, title string) string {
	if len(authors) == 0 {
		return title
	}
	if fam := strings.TrimSpace(authors[0].Family); fam != "" {
		return fam + clauseSeparator + title
	}
	return title
}
