// Package export renders catalog records in bibliography formats.
package export

import (
	"fmt"
	"strings"

	"github.com/atjproject/lawcat/internal/work"
)

var entryTypes = map[work.Type]string{
	work.TypeBook:         "book",
	work.TypeCommentary:   "book",
	work.TypeDissertation: "phdthesis",
	work.TypeFestschrift:  "collection",
	work.TypeAnthology:    "collection",
	work.TypeReport:       "techreport",
	work.TypeInquiry:      "techreport",
}

// ToBibTeX converts a record to a BibTeX entry keyed by the record id.
func ToBibTeX(rec work.Record) string {
	entryType := determineEntryType(rec)
	var b strings.Builder

	fmt.Fprintf(&b, "@%s{%s,\n", entryType, rec.ID)

	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "  %s = {%s},\n", name, value)
		}
	}

	if len(rec.Authors) > 0 {
		name := "author"
		if entryType == "collection" {
			name = "editor"
		}
		field(name, formatAuthors(rec.Authors))
	}
	field("title", escapeLatex(rec.Title))
	field("subtitle", escapeLatex(rec.Subtitle))
	if rec.Edition > 1 {
		field("edition", fmt.Sprint(rec.Edition))
	}
	if rec.Year > 0 {
		field("year", fmt.Sprint(rec.Year))
	}
	if entryType == "techreport" || entryType == "phdthesis" {
		field("institution", escapeLatex(rec.Publisher))
	} else {
		field("publisher", escapeLatex(rec.Publisher))
	}
	field("series", escapeLatex(rec.Series))
	field("isbn", rec.ISBN)
	field("url", rec.SourceURL)
	field("shorthand", escapeLatex(rec.CitationShort))
	if code := rec.Classification.Code(); code != "" {
		field("note", escapeLatex("Klassifikation "+code))
	}
	field("keywords", escapeLatex(strings.Join(keywords(rec), ", ")))

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple records to BibTeX format.
func ToBibTeXList(recs []work.Record) string {
	var entries []string
	for _, rec := range recs {
		entries = append(entries, ToBibTeX(rec))
	}
	return strings.Join(entries, "\n")
}

func determineEntryType(rec work.Record) string {
	if t, ok := entryTypes[rec.WorkType]; ok {
		return t
	}
	return "misc"
}

// formatAuthors formats authors in BibTeX style: "Family, Given and Family, Given"
func formatAuthors(authors []work.Author) string {
	var formatted []string
	for _, a := range authors {
		switch {
		case a.Given != "" && a.Family != "":
			formatted = append(formatted, fmt.Sprintf("%s, %s", escapeLatex(a.Family), escapeLatex(a.Given)))
		default:
			formatted = append(formatted, "{"+escapeLatex(a.Full())+"}")
		}
	}
	return strings.Join(formatted, " and ")
}

// keywords prefers controlled subject terms and falls back to the source
// catalog's subject labels.
func keywords(rec work.Record) []string {
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		k := strings.ToLower(s)
		if s == "" || seen[k] {
			return
		}
		seen[k] = true
		out = append(out, s)
	}
	for _, s := range rec.Subjects {
		add(s.Term)
	}
	if len(out) == 0 {
		for _, s := range rec.SourceSubjects {
			add(s)
		}
	}
	return out
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\textbackslash{}`,
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
