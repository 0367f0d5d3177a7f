package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/atjproject/lawcat/internal/libris"
)

var (
	bibEntryRe = regexp.MustCompile(`^\s*@\w+\s*\{\s*([^,\s]+)\s*,`)
	bibISBNRe  = regexp.MustCompile(`(?i)^\s*isbn\s*=\s*[{"]([^}"]+)[}"]`)
)

// BibTeXIndex records which works a .bib file already holds, by entry key
// and by normalized ISBN.
type BibTeXIndex struct {
	keys  map[string]struct{}
	isbns map[string]string
}

func newBibTeXIndex() *BibTeXIndex {
	return &BibTeXIndex{keys: map[string]struct{}{}, isbns: map[string]string{}}
}

// Len returns the number of entry keys seen.
func (idx *BibTeXIndex) Len() int { return len(idx.keys) }

// HasKey reports whether an entry with this key exists.
func (idx *BibTeXIndex) HasKey(key string) bool {
	_, ok := idx.keys[key]
	return ok
}

// HasEntry reports whether a work is already present. The ISBN decides
// when both sides carry one; otherwise the key does.
func (idx *BibTeXIndex) HasEntry(key, isbn string) bool {
	if n := libris.NormalizeISBN(isbn); n != "" {
		if _, ok := idx.isbns[n]; ok {
			return true
		}
	}
	return idx.HasKey(key)
}

// Add marks a work as present.
func (idx *BibTeXIndex) Add(key, isbn string) {
	idx.keys[key] = struct{}{}
	if n := libris.NormalizeISBN(isbn); n != "" {
		idx.isbns[n] = key
	}
}

// ParseBibTeX indexes the entries read from r. Only entry headers and isbn
// fields are looked at.
func ParseBibTeX(r io.Reader) (*BibTeXIndex, error) {
	idx := newBibTeXIndex()
	var key string

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if m := bibEntryRe.FindStringSubmatch(line); m != nil {
			key = m[1]
			idx.Add(key, "")
			continue
		}
		if key == "" {
			continue
		}
		if m := bibISBNRe.FindStringSubmatch(line); m != nil {
			idx.Add(key, strings.TrimSpace(m[1]))
		}
	}
	return idx, sc.Err()
}

// ParseBibTeXFile indexes an existing .bib file. A missing file yields an
// empty index.
func ParseBibTeXFile(path string) (*BibTeXIndex, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return newBibTeXIndex(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	idx, err := ParseBibTeX(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return idx, nil
}

// AppendToBibFile appends entries to path, creating it if needed.
func AppendToBibFile(path, entries string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString("\n" + entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
