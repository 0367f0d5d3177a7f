package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/atjproject/lawcat/internal/work"
)

func TestWriteSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "catalog.json")
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	recs := []work.Record{
		{
			ID:            "a",
			Title:         "Obligationsrätt",
			ExternalMatch: &work.Candidate{BibID: "1", Score: 0.9},
			PDF:           &work.PDFInfo{Path: "a.pdf", Downloaded: true},
			CitationLong:  "Knut Rodhe, Obligationsrätt, 1956",
			Aliases:       []string{},
		},
		{ID: "b", Title: "Sakrätt", PDF: &work.PDFInfo{Error: "404"}, Aliases: []string{}},
	}

	meta := NewSnapshotMeta(recs, at)
	if meta.TotalBooks != 2 || meta.BooksWithPDF != 1 || meta.BooksWithLibris != 1 || meta.BooksWithCitation != 1 {
		t.Errorf("NewSnapshotMeta() = %+v, want counts 2/1/1/1", meta)
	}
	if meta.License != SnapshotLicense {
		t.Errorf("License = %q, want %q", meta.License, SnapshotLicense)
	}

	if err := WriteSnapshot(path, recs, meta); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}
	if !got.Metadata.HarvestedAt.Equal(at) {
		t.Errorf("HarvestedAt = %v, want %v", got.Metadata.HarvestedAt, at)
	}
	if len(got.Books) != 2 || got.Books[0].CitationLong != recs[0].CitationLong {
		t.Errorf("Books = %+v, want round trip", got.Books)
	}
}

func TestWriteSnapshot_EmptyCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := WriteSnapshot(path, nil, NewSnapshotMeta(nil, time.Now())); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}
	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}
	if got.Books == nil || len(got.Books) != 0 {
		t.Errorf("Books = %v, want empty non-nil list", got.Books)
	}
}
