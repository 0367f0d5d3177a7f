// Package filename renders the archive file name of a work's PDF.
//
// The format is "year - type - Family[, Family2] - Title[ - Nuppl].pdf",
// folded to ASCII so the name survives any filesystem. It is computed from
// the record directly and does not depend on the citation formatter.
package filename

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/atjproject/lawcat/internal/work"
)

// Length limits for the individual parts.
const (
	MaxTypeLength    = 15
	MaxAuthorsLength = 40
	MaxTitleLength   = 60
	MaxDefaultLength = 80
)

const (
	partSeparator = " - "
	unknownYear   = "0000"
	unknownAuthor = "Okand"
	untitled      = "Utan titel"
	editionSuffix = "uppl"
	fileExtension = ".pdf"
	trailingTrim  = " .-,"
)

// typeLabels are the short Swedish labels used in archive file names.
var typeLabels = map[work.Type]string{
	work.TypeBook:         "bok",
	work.TypeDissertation: "avh",
	work.TypeFestschrift:  "festskrift",
	work.TypeAnthology:    "antologi",
	work.TypeCommentary:   "kommentar",
	work.TypeReport:       "rapport",
	work.TypeInquiry:      "betankande",
	work.TypeOther:        "ovrigt",
}

// swedishFolds spell out letters whose plain diacritic strip would lose
// the conventional Swedish transcription.
var swedishFolds = strings.NewReplacer(
	"å", "a", "ä", "ae", "ö", "oe",
	"Å", "A", "Ä", "Ae", "Ö", "Oe",
	"é", "e", "è", "e", "ü", "u", "ß", "ss",
)

// Render returns the file name for rec.
func Render(rec work.Record) string {
	year := unknownYear
	if rec.Year > 0 {
		year = strconv.Itoa(rec.Year)
	}

	label, ok := typeLabels[rec.WorkType]
	if !ok {
		label = typeLabels[work.TypeBook]
	}

	families := make([]string, 0, len(rec.Authors))
	for _, a := range rec.Authors {
		if f := strings.TrimSpace(a.Family); f != "" {
			families = append(families, f)
		}
	}
	authors := Sanitize(strings.Join(families, ", "), MaxAuthorsLength)
	if authors == "" {
		authors = unknownAuthor
	}

	title := Sanitize(rec.Title, MaxTitleLength)
	if title == "" {
		title = untitled
	}

	parts := []string{year, Sanitize(label, MaxTypeLength), authors, title}
	if rec.Edition >= 2 {
		parts = append(parts, strconv.Itoa(rec.Edition)+editionSuffix)
	}
	return strings.Join(parts, partSeparator) + fileExtension
}

// Sanitize folds text to ASCII, drops characters other than letters,
// digits, whitespace, comma, period, underscore and hyphen, collapses
// whitespace, and truncates to maxLen bytes.
func Sanitize(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = MaxDefaultLength
	}
	folded := swedishFolds.Replace(text)
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	if out, _, err := transform.String(t, folded); err == nil {
		folded = out
	}

	var b strings.Builder
	space := false
	for _, r := range folded {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsSpace(r):
			space = true
			continue
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == ',', r == '.', r == '-':
		default:
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}

	out := b.String()
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return strings.TrimRight(out, trailingTrim)
}
