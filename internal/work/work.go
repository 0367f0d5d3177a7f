// Package work defines the core domain types for catalogued legal works.
package work

// Type is the bibliographic kind of a work. It is catalog metadata only and
// never influences citation rendering.
type Type string

// Known work types.
const (
	TypeBook         Type = "book"
	TypeDissertation Type = "dissertation"
	TypeFestschrift  Type = "festschrift"
	TypeAnthology    Type = "anthology"
	TypeCommentary   Type = "commentary"
	TypeReport       Type = "report"
	TypeInquiry      Type = "inquiry"
	TypeOther        Type = "other"
)

// ValidTypes lists the recognised work types.
var ValidTypes = []Type{
	TypeBook, TypeDissertation, TypeFestschrift, TypeAnthology,
	TypeCommentary, TypeReport, TypeInquiry, TypeOther,
}

// Record is one catalogued work and its metadata.
type Record struct {
	// Identity
	ID string `json:"id"` // Stable identifier, immutable once assigned

	// Source catalog facts (authoritative for cataloging)
	Title      string   `json:"title"`
	Subtitle   string   `json:"subtitle,omitempty"`
	AuthorsRaw string   `json:"authors_raw"`
	Authors    []Author `json:"authors_parsed"`
	Year       int      `json:"year,omitempty"`    // 0 if unknown
	Edition    int      `json:"edition,omitempty"` // 0 or 1 means no edition stated
	WorkType   Type     `json:"work_type"`

	ISBN           string   `json:"isbn,omitempty"`
	URN            string   `json:"urn,omitempty"`
	Publisher      string   `json:"publisher,omitempty"`
	Series         string   `json:"series,omitempty"`
	SourceURL      string   `json:"source_url,omitempty"`
	PDFURL         string   `json:"pdf_url,omitempty"`
	SourceSubjects []string `json:"source_subjects,omitempty"`

	// Enrichment (sourced only from the external match)
	ExternalMatch  *Candidate      `json:"external_match,omitempty"`
	Classification *Classification `json:"classification,omitempty"`
	Subjects       []Subject       `json:"subjects,omitempty"`

	// Operator-curated alternate short names
	Aliases []string `json:"aliases"`

	// Derived
	CitationLong  string `json:"citation_long,omitempty"`
	CitationShort string `json:"citation_short,omitempty"`
	CitationError string `json:"citation_error,omitempty"`

	// Local file
	PDF *PDFInfo `json:"pdf,omitempty"`
}

// PDFInfo tracks the downloaded full-text file of a work.
type PDFInfo struct {
	Path       string `json:"path,omitempty"` // Relative to the configured PDF directory
	SizeBytes  int64  `json:"size_bytes,omitempty"`
	Pages      int    `json:"pages,omitempty"`
	Downloaded bool   `json:"downloaded"`
	Error      string `json:"error,omitempty"`
}

// PrimaryAuthor returns the first-listed author, if any.
func (r Record) PrimaryAuthor() (Author, bool) {
	if len(r.Authors) == 0 {
		return Author{}, false
	}
	return r.Authors[0], true
}

// IsEnriched reports whether an external match has been attached.
func (r Record) IsEnriched() bool {
	return r.ExternalMatch != nil
}

// Clone returns a deep copy so callers can mutate the result without
// aliasing slices or pointers of the original.
func (r Record) Clone() Record {
	out := r
	if r.Authors != nil {
		out.Authors = append([]Author(nil), r.Authors...)
	}
	if r.SourceSubjects != nil {
		out.SourceSubjects = append([]string(nil), r.SourceSubjects...)
	}
	if r.Subjects != nil {
		out.Subjects = append([]Subject(nil), r.Subjects...)
	}
	if r.Aliases != nil {
		out.Aliases = append([]string(nil), r.Aliases...)
	}
	if r.ExternalMatch != nil {
		m := r.ExternalMatch.Clone()
		out.ExternalMatch = &m
	}
	if r.Classification != nil {
		c := *r.Classification
		out.Classification = &c
	}
	if r.PDF != nil {
		p := *r.PDF
		out.PDF = &p
	}
	return out
}
