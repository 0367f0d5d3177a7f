package libris

import (
	"encoding/json"
	"regexp"
	"strconv"
)

// searchResponse is the xsearch JSON envelope.
type searchResponse struct {
	XSearch struct {
		From    int   `json:"from"`
		To      int   `json:"to"`
		Records int   `json:"records"`
		List    []Hit `json:"list"`
	} `json:"xsearch"`
}

// Hit is one xsearch result.
type Hit struct {
	Identifier string     `json:"identifier"` // e.g. http://libris.kb.se/bib/1234567
	Title      string     `json:"title"`
	Creator    stringList `json:"creator"`
	Date       string     `json:"date"`
	ISBN       stringList `json:"isbn"`
	Type       string     `json:"type"`
	Publisher  stringList `json:"publisher"`
}

var (
	bibIDPattern = regexp.MustCompile(`/bib/(\w+)`)
	yearPattern  = regexp.MustCompile(`\d{4}`)
)

// BibID extracts the bibliographic record id from the identifier URL.
func (h Hit) BibID() string {
	if m := bibIDPattern.FindStringSubmatch(h.Identifier); m != nil {
		return m[1]
	}
	return ""
}

// Year returns the first four-digit year in the date field, or 0.
func (h Hit) Year() int {
	y, err := strconv.Atoi(yearPattern.FindString(h.Date))
	if err != nil {
		return 0
	}
	return y
}

// IsBook reports whether the hit is a printed book.
func (h Hit) IsBook() bool {
	return h.Type == "book"
}

// stringList decodes a JSON value that is either a string or an array of
// strings. xsearch uses both forms for repeatable fields.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*s = nil
		} else {
			*s = stringList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// First returns the first element, or "".
func (s stringList) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
