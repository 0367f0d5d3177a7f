package crawl

import (
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/atjproject/lawcat/internal/htmlq"
	"github.com/atjproject/lawcat/internal/names"
	"github.com/atjproject/lawcat/internal/work"
)

// Entry is one book as seen on the juridikbok.se listing and detail pages.
type Entry struct {
	ID        string
	DetailURL string

	Title    string
	Subtitle string
	Year     int
	Authors  []string

	// Filled from the detail page.
	ISBN      string
	URN       string
	Edition   int
	Publisher string
	Series    string
	TypeLabel string
	Subjects  []string
	PDFURL    string

	// Detailed is set once the detail page has been read.
	Detailed bool
}

// ListPage is one page of the catalog listing.
type ListPage struct {
	Entries []Entry
	// LastPage is the highest page number shown in the pagination, 1-based.
	// Zero means the page has no pagination.
	LastPage int
}

var (
	trailingYear = regexp.MustCompile(`\s*\((\d{4})\)\s*$`)
	anyYear      = regexp.MustCompile(`\((\d{4})\)`)
	bookIDPath   = regexp.MustCompile(`/book/(.+)$`)
	leadingInt   = regexp.MustCompile(`\d+`)
)

// Detail list keys.
const (
	keyISBN      = "ISBN"
	keyURN       = "URN"
	keyEdition   = "Upplaga"
	keyPublisher = "Förlag & år"
	keySeries    = "Serie"
	keyType      = "Typ av verk"
	keySubjects  = "Ämnen"
)

// ParseListPage parses a catalog listing page. Relative links are resolved
// against base.
func ParseListPage(r io.Reader, base *url.URL) (*ListPage, error) {
	doc, err := htmlq.Parse(r)
	if err != nil {
		return nil, err
	}

	page := &ListPage{}
	for _, div := range htmlq.FindAll(doc, htmlq.TagClass(atom.Div, "book")) {
		e, ok := parseListEntry(div, base)
		if ok {
			page.Entries = append(page.Entries, e)
		}
	}

	if ul := htmlq.Find(doc, htmlq.TagClass(atom.Ul, "pagination")); ul != nil {
		for _, a := range htmlq.FindAll(ul, htmlq.TagClass(atom.A, "page-link")) {
			if n, err := strconv.Atoi(htmlq.Text(a)); err == nil && n > page.LastPage {
				page.LastPage = n
			}
		}
	}
	return page, nil
}

func parseListEntry(div *html.Node, base *url.URL) (Entry, bool) {
	var e Entry

	h := htmlq.Find(div, htmlq.TagClass(atom.H3, "title"))
	if h == nil {
		return e, false
	}
	link := htmlq.Find(h, htmlq.Tag(atom.A))
	if link == nil {
		return e, false
	}

	raw := htmlq.Text(link)
	e.Title = raw
	if m := trailingYear.FindStringSubmatch(raw); m != nil {
		e.Year, _ = strconv.Atoi(m[1])
		e.Title = strings.TrimSpace(trailingYear.ReplaceAllString(raw, ""))
	}
	if e.Title == "" {
		return e, false
	}

	if href, ok := htmlq.Attr(link, "href"); ok {
		e.DetailURL = resolve(base, href)
		if m := bookIDPath.FindStringSubmatch(strings.TrimRight(e.DetailURL, "/")); m != nil {
			e.ID = m[1]
		}
	}

	if p := htmlq.Find(div, htmlq.TagClass(atom.P, "subtitle")); p != nil {
		e.Subtitle = htmlq.Text(p)
	}
	for _, a := range htmlq.FindAll(div, htmlq.TagClass(atom.A, "author")) {
		if name := htmlq.Text(a); name != "" {
			e.Authors = append(e.Authors, name)
		}
	}
	return e, true
}

// ParseDetailPage fills e from a book detail page.
func ParseDetailPage(r io.Reader, base *url.URL, e *Entry) error {
	doc, err := htmlq.Parse(r)
	if err != nil {
		return err
	}

	if a := htmlq.Find(doc, htmlq.AttrContains(atom.A, "href", "/books/pdf?")); a != nil {
		href, _ := htmlq.Attr(a, "href")
		e.PDFURL = resolve(base, href)
	}

	dl := htmlq.Find(doc, htmlq.TagClass(atom.Dl, "details"))
	if dl == nil {
		return nil
	}

	var key string
	for _, child := range htmlq.Children(dl) {
		switch child.DataAtom {
		case atom.Dt:
			key = htmlq.Text(child)
		case atom.Dd:
			if key == "" {
				continue
			}
			applyDetail(e, key, child)
			key = ""
		}
	}
	return nil
}

func applyDetail(e *Entry, key string, dd *html.Node) {
	value := htmlq.Text(dd)
	switch key {
	case keyISBN:
		e.ISBN = value
	case keyURN:
		if a := htmlq.Find(dd, htmlq.Tag(atom.A)); a != nil {
			e.URN = htmlq.Text(a)
		} else {
			e.URN = value
		}
	case keyEdition:
		if n, err := strconv.Atoi(leadingInt.FindString(value)); err == nil {
			e.Edition = n
		}
	case keyPublisher:
		if m := anyYear.FindStringSubmatch(value); m != nil {
			if e.Year == 0 {
				e.Year, _ = strconv.Atoi(m[1])
			}
			value = strings.TrimSpace(anyYear.ReplaceAllString(value, ""))
		}
		e.Publisher = strings.TrimRight(value, " ,")
	case keySeries:
		e.Series = value
	case keyType:
		e.TypeLabel = value
	case keySubjects:
		links := htmlq.FindAll(dd, htmlq.Tag(atom.A))
		if len(links) == 0 {
			if value != "" {
				e.Subjects = []string{value}
			}
			return
		}
		for _, a := range links {
			if t := htmlq.Text(a); t != "" {
				e.Subjects = append(e.Subjects, t)
			}
		}
	}
}

// typeLabels maps juridikbok.se work type labels, lowercased.
var typeLabels = map[string]work.Type{
	"monografi":            work.TypeBook,
	"lärobok":              work.TypeBook,
	"avhandling":           work.TypeDissertation,
	"akademisk avhandling": work.TypeDissertation,
	"festskrift":           work.TypeFestschrift,
	"antologi":             work.TypeAnthology,
	"kommentar":            work.TypeCommentary,
	"lagkommentar":         work.TypeCommentary,
	"rapport":              work.TypeReport,
	"betänkande":           work.TypeInquiry,
}

// MapWorkType maps a juridikbok.se label such as "Akademisk avhandling" to a
// work type. An empty label is a book; an unknown one is other.
func MapWorkType(label string) work.Type {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return work.TypeBook
	}
	if t, ok := typeLabels[label]; ok {
		return t
	}
	return work.TypeOther
}

// AuthorsRaw joins the listed author names the way they are written in
// running text: "A", "A och B", "A, B och C".
func (e Entry) AuthorsRaw() string {
	switch len(e.Authors) {
	case 0:
		return ""
	case 1:
		return e.Authors[0]
	default:
		return strings.Join(e.Authors[:len(e.Authors)-1], ", ") + " och " + e.Authors[len(e.Authors)-1]
	}
}

// Record converts the entry into a catalog record. An entry whose detail
// page was not read carries no work type, so merging it into the catalog
// keeps the type already stored.
func (e Entry) Record() work.Record {
	raw := e.AuthorsRaw()
	id := e.ID
	if id == "" {
		id = work.DeriveID(e.Title, raw)
	}
	var wt work.Type
	if e.Detailed || e.TypeLabel != "" {
		wt = MapWorkType(e.TypeLabel)
	}
	var subjects []string
	if len(e.Subjects) > 0 {
		subjects = append(subjects, e.Subjects...)
	}
	return work.Record{
		ID:             id,
		Title:          e.Title,
		Subtitle:       e.Subtitle,
		AuthorsRaw:     raw,
		Authors:        names.Parse(raw),
		Year:           e.Year,
		Edition:        e.Edition,
		WorkType:       wt,
		ISBN:           e.ISBN,
		URN:            e.URN,
		Publisher:      e.Publisher,
		Series:         e.Series,
		SourceURL:      e.DetailURL,
		PDFURL:         e.PDFURL,
		SourceSubjects: subjects,
	}
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
