package work

// Candidate is one external-catalog search result considered for
// enrichment of a Record.
type Candidate struct {
	BibID string `json:"bib_id,omitempty"`
	URL   string `json:"url,omitempty"`

	Title   string   `json:"match_title"`
	Authors []string `json:"match_authors,omitempty"` // As returned, e.g. "Rodhe, Knut, 1909-1999"
	Year    int      `json:"match_year,omitempty"`

	ISBN           string          `json:"isbn,omitempty"`
	Classification *Classification `json:"classification,omitempty"`
	Subjects       []Subject       `json:"subject_terms,omitempty"`

	// Score is computed by the matcher on every run; it is stored with the
	// attached match so later runs can tell whether a new match is better.
	Score float64 `json:"score"`
}

// Classification holds shelving and subject classification codes.
type Classification struct {
	SAB            string `json:"sab,omitempty"`
	SABDescription string `json:"sab_description,omitempty"`
	DDC            string `json:"ddc,omitempty"`
	UDK            string `json:"udk,omitempty"`
}

// Subject is a controlled-vocabulary term and the vocabulary it comes from.
type Subject struct {
	Term   string `json:"term"`
	System string `json:"system,omitempty"`
}

// HasClassification reports whether the candidate carries any code.
func (c Candidate) HasClassification() bool {
	return !c.Classification.IsEmpty()
}

// Clone returns a deep copy of the candidate.
func (c Candidate) Clone() Candidate {
	out := c
	if c.Authors != nil {
		out.Authors = append([]string(nil), c.Authors...)
	}
	if c.Subjects != nil {
		out.Subjects = append([]Subject(nil), c.Subjects...)
	}
	if c.Classification != nil {
		cl := *c.Classification
		out.Classification = &cl
	}
	return out
}

// IsEmpty reports whether no classification code is set. A nil receiver is empty.
func (c *Classification) IsEmpty() bool {
	return c == nil || (c.SAB == "" && c.DDC == "" && c.UDK == "")
}

// Code returns the most specific available code, preferring SAB, then DDC, then UDK.
func (c *Classification) Code() string {
	switch {
	case c == nil:
		return ""
	case c.SAB != "":
		return c.SAB
	case c.DDC != "":
		return c.DDC
	default:
		return c.UDK
	}
}
