// Package merge combines source catalog records with external matches and
// with previously persisted state.
//
// The primary source is authoritative for bibliographic facts (title, year,
// work type, edition, authors). The external catalog is authoritative only
// for classification and subject enrichment, and enrichment is
// monotonic-additive: a merge never clears classification or subjects that
// an earlier run attached.
package merge

import (
	"github.com/atjproject/lawcat/internal/work"
)

// Enrich attaches the selected external match to rec and returns the
// updated copy. A nil match, or a match scoring lower than the one already
// attached, leaves the record's enrichment untouched.
func Enrich(rec work.Record, match *work.Candidate) work.Record {
	out := rec.Clone()
	if match == nil {
		return out
	}
	if !replaces(out.ExternalMatch, match) {
		return out
	}

	m := match.Clone()
	out.ExternalMatch = &m
	if !m.Classification.IsEmpty() {
		c := *m.Classification
		out.Classification = &c
	}
	if len(m.Subjects) > 0 {
		out.Subjects = append([]work.Subject(nil), m.Subjects...)
	}
	if out.ISBN == "" && m.ISBN != "" {
		out.ISBN = m.ISBN
	}
	return out
}

// Incremental merges a newly produced record into the persisted one with
// the same id. It is the upsert contract of the catalog store:
//
//   - source facts come from incoming when it carries them, else from existing
//   - an ISBN, once set, is never overwritten
//   - enrichment follows the same monotonic rule as Enrich
//   - aliases are the ordered union, existing entries first
//   - PDF info is replaced only when incoming carries some
//
// Derived citation fields are taken from incoming when it has them and from
// existing otherwise; callers recompute them after merging.
func Incremental(existing, incoming work.Record) work.Record {
	out := existing.Clone()
	in := incoming.Clone()

	out.Title = pickString(in.Title, out.Title)
	out.Subtitle = pickString(in.Subtitle, out.Subtitle)
	if in.AuthorsRaw != "" {
		out.AuthorsRaw = in.AuthorsRaw
		out.Authors = in.Authors
	} else if len(out.Authors) == 0 {
		out.Authors = in.Authors
	}
	out.Year = pickInt(in.Year, out.Year)
	out.Edition = pickInt(in.Edition, out.Edition)
	if in.WorkType != "" {
		out.WorkType = in.WorkType
	}
	if out.ISBN == "" {
		out.ISBN = in.ISBN
	}
	out.URN = pickString(in.URN, out.URN)
	out.Publisher = pickString(in.Publisher, out.Publisher)
	out.Series = pickString(in.Series, out.Series)
	out.SourceURL = pickString(in.SourceURL, out.SourceURL)
	out.PDFURL = pickString(in.PDFURL, out.PDFURL)
	if len(in.SourceSubjects) > 0 {
		out.SourceSubjects = in.SourceSubjects
	}

	if in.ExternalMatch != nil && replaces(out.ExternalMatch, in.ExternalMatch) {
		out.ExternalMatch = in.ExternalMatch
		if !in.Classification.IsEmpty() {
			out.Classification = in.Classification
		}
		if len(in.Subjects) > 0 {
			out.Subjects = in.Subjects
		}
	}
	if out.Classification.IsEmpty() && !in.Classification.IsEmpty() {
		out.Classification = in.Classification
	}
	if len(out.Subjects) == 0 && len(in.Subjects) > 0 {
		out.Subjects = in.Subjects
	}

	out.Aliases = unionAliases(out.Aliases, in.Aliases)

	if in.PDF != nil {
		out.PDF = in.PDF
	}

	if in.CitationLong != "" || in.CitationError != "" {
		out.CitationLong = in.CitationLong
		out.CitationShort = in.CitationShort
		out.CitationError = in.CitationError
	}

	return out
}

// replaces reports whether next may take the place of the current match:
// there is none yet, or next scores at least as high.
func replaces(current, next *work.Candidate) bool {
	return current == nil || next.Score >= current.Score
}

func unionAliases(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]bool, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, lists := range [][]string{existing, incoming} {
		for _, a := range lists {
			if a == "" || seen[a] {
				continue
			}
			seen[a] = true
			out = append(out, a)
		}
	}
	return out
}

func pickString(preferred, fallback string) string {
	if preferred != "" {
		return preferred
	}
	return fallback
}

func pickInt(preferred, fallback int) int {
	if preferred != 0 {
		return preferred
	}
	return fallback
}
