package storage

import (
	"path/filepath"
	"testing"

	"github.com/atjproject/lawcat/internal/work"
)

// setupTestDB creates a test database and JSONL file with test data
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "catalog.db")
	jsonlPath := filepath.Join(tmpDir, "catalog.jsonl")

	recs := []work.Record{
		{
			ID:         "rodhe-obligationsratt",
			Title:      "Obligationsrätt",
			AuthorsRaw: "Knut Rodhe",
			Authors:    []work.Author{{Given: "Knut", Family: "Rodhe"}},
			Year:       1956,
			WorkType:   work.TypeBook,
			Classification: &work.Classification{
				SAB: "Ohbb", SABDescription: "Obligationsrätt",
			},
			ExternalMatch: &work.Candidate{BibID: "1", Title: "Obligationsrätt", Score: 0.97},
			CitationLong:  "Knut Rodhe, Obligationsrätt, 1956",
			CitationShort: "Rodhe, Obligationsrätt",
			Aliases:       []string{"Rodhe Obl"},
		},
		{
			ID:         "tiberg-skuldebrev",
			Title:      "Skuldebrev, växel och check",
			AuthorsRaw: "Hugo Tiberg och Dan Lennhammer",
			Authors: []work.Author{
				{Given: "Hugo", Family: "Tiberg"},
				{Given: "Dan", Family: "Lennhammer"},
			},
			Year:           1995,
			Edition:        7,
			WorkType:       work.TypeBook,
			Classification: &work.Classification{SAB: "Ohbd"},
			PDF:            &work.PDFInfo{Path: "x.pdf", Downloaded: true},
			Aliases:        []string{},
		},
		{
			ID:             "hellner-festskrift",
			Title:          "Festskrift till Jan Hellner",
			Year:           1984,
			WorkType:       work.TypeFestschrift,
			SourceSubjects: []string{"Skadeståndsrätt"},
			Classification: &work.Classification{SAB: "Oc"},
			Aliases:        []string{},
		},
	}
	if err := WriteAll(jsonlPath, recs); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	n, err := db.RebuildFromJSONL(jsonlPath)
	if err != nil {
		t.Fatalf("RebuildFromJSONL() error = %v", err)
	}
	if n != len(recs) {
		t.Fatalf("RebuildFromJSONL() = %d, want %d", n, len(recs))
	}
	return db
}

func TestGetByID(t *testing.T) {
	db := setupTestDB(t)

	rec, err := db.GetByID("tiberg-skuldebrev")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if rec == nil {
		t.Fatal("GetByID() returned nil")
	}
	if rec.Edition != 7 {
		t.Errorf("Edition = %d, want 7", rec.Edition)
	}
	if len(rec.Authors) != 2 || rec.Authors[1].Family != "Lennhammer" {
		t.Errorf("Authors = %+v, want Tiberg, Lennhammer", rec.Authors)
	}

	missing, err := db.GetByID("nope")
	if err != nil {
		t.Fatalf("GetByID(nope) error = %v", err)
	}
	if missing != nil {
		t.Errorf("GetByID(nope) = %+v, want nil", missing)
	}
}

func TestSearch(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"Obligationsrätt", []string{"rodhe-obligationsratt"}},
		{"Lennhammer", []string{"tiberg-skuldebrev"}},
		{"Skadeståndsrätt", []string{"hellner-festskrift"}},
		{"Rodhe Obl", []string{"rodhe-obligationsratt"}},
		{"nonexistentterm", nil},
	}
	for _, tt := range tests {
		got, err := db.Search(tt.query, 10)
		if err != nil {
			t.Fatalf("Search(%q) error = %v", tt.query, err)
		}
		if ids := recordIDs(got); !equalIDs(ids, tt.want) {
			t.Errorf("Search(%q) = %v, want %v", tt.query, ids, tt.want)
		}
	}
}

func TestSearchWithFilters(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		name    string
		filters SearchFilters
		want    []string
	}{
		{"year range", SearchFilters{YearFrom: 1980, YearTo: 1990}, []string{"hellner-festskrift"}},
		{"year from", SearchFilters{YearFrom: 1984}, []string{"hellner-festskrift", "tiberg-skuldebrev"}},
		{"work type", SearchFilters{WorkType: work.TypeFestschrift}, []string{"hellner-festskrift"}},
		{"sab prefix", SearchFilters{SABPrefix: "Oh"}, []string{"rodhe-obligationsratt", "tiberg-skuldebrev"}},
		{"sab exact", SearchFilters{SABPrefix: "Ohbd"}, []string{"tiberg-skuldebrev"}},
		{"author prefix", SearchFilters{Author: "Tib"}, []string{"tiberg-skuldebrev"}},
		{"author given and family", SearchFilters{Author: "Knut Rodhe"}, []string{"rodhe-obligationsratt"}},
		{"author given mismatch", SearchFilters{Author: "Knut Tiberg"}, nil},
		{"co-authors", SearchFilters{Author: "Tiberg och Lennhammer"}, []string{"tiberg-skuldebrev"}},
		{"title", SearchFilters{Title: "växel"}, []string{"tiberg-skuldebrev"}},
		{"has pdf", SearchFilters{HasPDF: true}, []string{"tiberg-skuldebrev"}},
		{"keyword and year", SearchFilters{Keyword: "Obligationsrätt", YearTo: 1950}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.SearchWithFilters(tt.filters, 0)
			if err != nil {
				t.Fatalf("SearchWithFilters() error = %v", err)
			}
			if ids := recordIDs(got); !equalIDs(ids, tt.want) {
				t.Errorf("SearchWithFilters() = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestListAllAndCount(t *testing.T) {
	db := setupTestDB(t)

	all, err := db.ListAll(0)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListAll() returned %d, want 3", len(all))
	}

	limited, err := db.ListAll(2)
	if err != nil {
		t.Fatalf("ListAll(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("ListAll(2) returned %d, want 2", len(limited))
	}

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

func TestRebuildReplacesContent(t *testing.T) {
	db := setupTestDB(t)

	n, err := db.Rebuild([]work.Record{{ID: "only", Title: "Sakrätt", WorkType: work.TypeBook}})
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Rebuild() = %d, want 1", n)
	}
	count, _ := db.Count()
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
	got, _ := db.Search("Obligationsrätt", 10)
	if len(got) != 0 {
		t.Errorf("Search() after rebuild returned stale rows: %v", recordIDs(got))
	}
}

func recordIDs(recs []work.Record) []string {
	var ids []string
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
