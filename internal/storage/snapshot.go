package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atjproject/lawcat/internal/work"
)

// Snapshot defaults.
const (
	SnapshotSource  = "juridikbok.se"
	SnapshotLicense = "CC BY-NC 4.0"
	SnapshotVersion = "2.0"
)

// SnapshotMeta is the header of an exported catalog snapshot.
type SnapshotMeta struct {
	Source            string    `json:"source"`
	License           string    `json:"license"`
	HarvestedAt       time.Time `json:"harvested_at"`
	TotalBooks        int       `json:"total_books"`
	BooksWithPDF      int       `json:"books_with_pdf"`
	BooksWithLibris   int       `json:"books_with_libris"`
	BooksWithCitation int       `json:"books_with_citation"`
	Version           string    `json:"version"`
}

// Snapshot is the single-document export of the whole catalog.
type Snapshot struct {
	Metadata SnapshotMeta  `json:"metadata"`
	Books    []work.Record `json:"books"`
}

// NewSnapshotMeta counts recs and fills in the default header fields.
func NewSnapshotMeta(recs []work.Record, at time.Time) SnapshotMeta {
	meta := SnapshotMeta{
		Source:      SnapshotSource,
		License:     SnapshotLicense,
		HarvestedAt: at.UTC(),
		TotalBooks:  len(recs),
		Version:     SnapshotVersion,
	}
	for _, rec := range recs {
		if rec.PDF != nil && rec.PDF.Downloaded {
			meta.BooksWithPDF++
		}
		if rec.IsEnriched() {
			meta.BooksWithLibris++
		}
		if rec.CitationLong != "" {
			meta.BooksWithCitation++
		}
	}
	return meta
}

// WriteSnapshot writes recs with a metadata header as indented JSON.
func WriteSnapshot(path string, recs []work.Record, meta SnapshotMeta) error {
	if recs == nil {
		recs = []work.Record{}
	}
	data, err := json.MarshalIndent(Snapshot{Metadata: meta, Books: recs}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot reads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return &s, nil
}
