package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
)

// ErrNotPDF indicates the file does not start with a PDF header.
var ErrNotPDF = errors.New("not a PDF file")

var pdfMagic = []byte("%PDF-")

// HasHeader reports whether the file at path starts with the PDF magic bytes.
func HasHeader(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(head, pdfMagic), nil
}

// PageCount opens the PDF at path and returns its number of pages.
func PageCount(path string) (n int, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("reading %s: malformed PDF: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	return r.NumPage(), nil
}

// Verify checks that path holds a readable PDF with at least one page and
// returns the page count.
func Verify(path string) (int, error) {
	ok, err := HasHeader(path)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%s: %w", path, ErrNotPDF)
	}
	n, err := PageCount(path)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("%s: PDF has no pages", path)
	}
	return n, nil
}
