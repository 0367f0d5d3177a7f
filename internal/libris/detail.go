package libris

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/atjproject/lawcat/internal/htmlq"
	"github.com/atjproject/lawcat/internal/work"
)

// Section headings on the full record page.
const (
	subjectsHeading       = "Ämnesord och genre"
	classificationHeading = "Klassifikation"
	sabHeading            = "SAB-rubrik"
	sabTitlePrefix        = "SAB:"
)

// Detail is the enrichment data found on a full record page.
type Detail struct {
	Classification *work.Classification
	Subjects       []work.Subject
}

// Apply copies the detail onto a candidate.
func (d *Detail) Apply(c *work.Candidate) {
	if d == nil {
		return
	}
	if !d.Classification.IsEmpty() {
		cl := *d.Classification
		c.Classification = &cl
	}
	if len(d.Subjects) > 0 {
		c.Subjects = append([]work.Subject(nil), d.Subjects...)
	}
}

// ParseDetail extracts subject terms and classification codes from a
// full record page. Missing sections yield empty fields, not an error.
func ParseDetail(r io.Reader) (*Detail, error) {
	doc, err := htmlq.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Detail{
		Classification: parseClassification(doc),
		Subjects:       parseSubjects(doc),
	}, nil
}

func parseSubjects(doc *html.Node) []work.Subject {
	h := htmlq.Find(doc, htmlq.TagText(atom.H3, subjectsHeading))
	if h == nil {
		return nil
	}
	section := htmlq.Next(h, htmlq.Tag(atom.Div))
	if section == nil {
		return nil
	}

	var subjects []work.Subject
	for _, a := range htmlq.FindAll(section, htmlq.Tag(atom.A)) {
		term := htmlq.Text(a)
		if term == "" {
			continue
		}
		s := work.Subject{Term: term}
		if span := htmlq.NextSibling(a, htmlq.TagClass(atom.Span, "beskrivning")); span != nil {
			s.System = strings.Trim(htmlq.Text(span), "() ")
		}
		subjects = append(subjects, s)
	}
	return subjects
}

func parseClassification(doc *html.Node) *work.Classification {
	h := htmlq.Find(doc, htmlq.TagText(atom.H3, classificationHeading))
	if h == nil {
		return nil
	}
	section := htmlq.Next(h, htmlq.Tag(atom.Div))
	if section == nil {
		return nil
	}

	var c work.Classification
	c.DDC = labelledCode(section, "DDC")
	c.UDK = labelledCode(section, "UDK")

	// The last SAB code listed wins.
	for _, a := range htmlq.FindAll(section, htmlq.AttrContains(atom.A, "title", sabTitlePrefix)) {
		if code := htmlq.Text(a); code != "" {
			c.SAB = code
		}
	}
	if c.SAB != "" {
		if rh := htmlq.Find(doc, htmlq.TagText(atom.H3, sabHeading)); rh != nil {
			if div := htmlq.Next(rh, htmlq.Tag(atom.Div)); div != nil {
				c.SABDescription = htmlq.Text(div)
			}
		}
	}

	if c.IsEmpty() {
		return nil
	}
	return &c
}

// labelledCode returns the text of the first link after the span whose
// text contains label.
func labelledCode(section *html.Node, label string) string {
	span := htmlq.Find(section, htmlq.TagText(atom.Span, label))
	if span == nil {
		return ""
	}
	if a := htmlq.Next(span, htmlq.Tag(atom.A)); a != nil {
		return htmlq.Text(a)
	}
	return ""
}
