package git

import (
	"slices"
	"strconv"
	"strings"

	"github.com/atjproject/lawcat/internal/work"
)

// Diff holds the catalog changes between two states, each list sorted by id.
type Diff struct {
	Added   []work.Record
	Removed []work.Record
	Changed []Change
}

// Change names the fields of one work that differ between two states.
type Change struct {
	Before work.Record
	After  work.Record
	Fields []string
}

// IsEmpty reports whether nothing changed.
func (d Diff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

type field struct {
	name string
	get  func(work.Record) string
}

var diffFields = []field{
	{"title", func(r work.Record) string { return r.Title }},
	{"subtitle", func(r work.Record) string { return r.Subtitle }},
	{"authors_raw", func(r work.Record) string { return r.AuthorsRaw }},
	{"year", func(r work.Record) string { return strconv.Itoa(r.Year) }},
	{"edition", func(r work.Record) string { return strconv.Itoa(r.Edition) }},
	{"work_type", func(r work.Record) string { return string(r.WorkType) }},
	{"isbn", func(r work.Record) string { return r.ISBN }},
	{"publisher", func(r work.Record) string { return r.Publisher }},
	{"external_match", func(r work.Record) string {
		if r.ExternalMatch == nil {
			return ""
		}
		return r.ExternalMatch.BibID
	}},
	{"classification", func(r work.Record) string { return r.Classification.Code() }},
	{"subjects", func(r work.Record) string { return strconv.Itoa(len(r.Subjects)) }},
	{"aliases", func(r work.Record) string { return strconv.Itoa(len(r.Aliases)) }},
	{"citation_long", func(r work.Record) string { return r.CitationLong }},
	{"pdf", func(r work.Record) string {
		if r.PDF == nil {
			return ""
		}
		return strconv.FormatBool(r.PDF.Downloaded) + r.PDF.Path
	}},
}

// Compare computes the changes from old to current, keyed by work id.
func Compare(old, current []work.Record) Diff {
	before := make(map[string]work.Record, len(old))
	for _, r := range old {
		before[r.ID] = r
	}
	after := make(map[string]work.Record, len(current))
	for _, r := range current {
		after[r.ID] = r
	}

	var d Diff
	for id, r := range after {
		prev, ok := before[id]
		if !ok {
			d.Added = append(d.Added, r)
			continue
		}
		var changed []string
		for _, f := range diffFields {
			if f.get(prev) != f.get(r) {
				changed = append(changed, f.name)
			}
		}
		if len(changed) > 0 {
			d.Changed = append(d.Changed, Change{Before: prev, After: r, Fields: changed})
		}
	}
	for id, r := range before {
		if _, ok := after[id]; !ok {
			d.Removed = append(d.Removed, r)
		}
	}

	byID := func(a, b work.Record) int { return strings.Compare(a.ID, b.ID) }
	slices.SortFunc(d.Added, byID)
	slices.SortFunc(d.Removed, byID)
	slices.SortFunc(d.Changed, func(a, b Change) int { return strings.Compare(a.After.ID, b.After.ID) })
	return d
}
