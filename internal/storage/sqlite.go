package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/atjproject/lawcat/internal/author"
	"github.com/atjproject/lawcat/internal/work"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// The full record is kept as JSON; the other columns exist for filtering.
const selectWorkFields = `record_json`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS works (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			year INTEGER,
			edition INTEGER,
			work_type TEXT,
			isbn TEXT,
			publisher TEXT,
			sab TEXT,
			ddc TEXT,
			match_score REAL,
			has_pdf INTEGER NOT NULL DEFAULT 0,
			citation_long TEXT,
			citation_short TEXT,
			record_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_works_isbn ON works(isbn) WHERE isbn IS NOT NULL AND isbn != '';
		CREATE INDEX IF NOT EXISTS idx_works_year ON works(year);
		CREATE INDEX IF NOT EXISTS idx_works_sab ON works(sab);

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS works_fts USING fts5(
			id,
			title,
			authors_text,
			subjects_text,
			citation_text,
			aliases_text
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL file.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	recs, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}
	return d.Rebuild(recs)
}

// Rebuild replaces the indexed content with recs in a single transaction.
func (d *DB) Rebuild(recs []work.Record) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	if _, err := tx.Exec("DELETE FROM works"); err != nil {
		return 0, fmt.Errorf("clearing works table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM works_fts"); err != nil {
		return 0, fmt.Errorf("clearing works_fts table: %w", err)
	}

	worksStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO works (
			id, title, year, edition, work_type, isbn, publisher,
			sab, ddc, match_score, has_pdf,
			citation_long, citation_short, record_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing works insert: %w", err)
	}
	defer worksStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO works_fts (id, title, authors_text, subjects_text, citation_text, aliases_text)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, rec := range recs {
		recordJSON, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("marshaling record %s: %w", rec.ID, err)
		}

		var sab, ddc string
		if rec.Classification != nil {
			sab, ddc = rec.Classification.SAB, rec.Classification.DDC
		}
		var score sql.NullFloat64
		if rec.ExternalMatch != nil {
			score = sql.NullFloat64{Float64: rec.ExternalMatch.Score, Valid: true}
		}
		hasPDF := 0
		if rec.PDF != nil && rec.PDF.Downloaded {
			hasPDF = 1
		}

		_, err = worksStmt.Exec(
			rec.ID, rec.Title, nullableInt(rec.Year), nullableInt(rec.Edition),
			string(rec.WorkType), nullableStringValue(rec.ISBN), nullableStringValue(rec.Publisher),
			nullableStringValue(sab), nullableStringValue(ddc), score, hasPDF,
			nullableStringValue(rec.CitationLong), nullableStringValue(rec.CitationShort),
			string(recordJSON),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting work %s: %w", rec.ID, err)
		}

		_, err = ftsStmt.Exec(
			rec.ID,
			strings.TrimSpace(rec.Title+" "+rec.Subtitle),
			formatAuthorsText(rec),
			formatSubjectsText(rec),
			rec.CitationLong,
			strings.Join(rec.Aliases, "; "),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(recs), nil
}

// formatAuthorsText creates a searchable text representation of authors.
func formatAuthorsText(rec work.Record) string {
	if len(rec.Authors) == 0 {
		return rec.AuthorsRaw
	}
	names := make([]string, 0, len(rec.Authors))
	for _, a := range rec.Authors {
		names = append(names, a.Full())
	}
	return strings.Join(names, ", ")
}

func formatSubjectsText(rec work.Record) string {
	var terms []string
	terms = append(terms, rec.SourceSubjects...)
	for _, s := range rec.Subjects {
		terms = append(terms, s.Term)
	}
	if rec.Classification != nil && rec.Classification.SABDescription != "" {
		terms = append(terms, rec.Classification.SABDescription)
	}
	return strings.Join(terms, "; ")
}

// GetByID retrieves a record by its ID. It returns nil when there is none.
func (d *DB) GetByID(id string) (*work.Record, error) {
	row := d.db.QueryRow(`SELECT `+selectWorkFields+` FROM works WHERE id = ?`, id)
	return scanWork(row)
}

// Search performs a full-text search and returns matching records.
func (d *DB) Search(query string, limit int) ([]work.Record, error) {
	return d.SearchWithFilters(SearchFilters{Keyword: query}, limit)
}

// SearchFilters contains optional filters for SearchWithFilters.
type SearchFilters struct {
	Keyword   string    // General keyword search across all text fields
	Author    string    // Author names, see author.ParseQueries
	Title     string    // Search in title only (FTS)
	YearFrom  int       // Minimum publication year (0 = no minimum)
	YearTo    int       // Maximum publication year (0 = no maximum)
	WorkType  work.Type // Exact work type
	SABPrefix string    // SAB code prefix, e.g. "Oh" matches "Ohbb"
	HasPDF    bool      // Only works with a downloaded PDF
}

// SearchWithFilters performs a search with multiple optional filters.
// Returns records matching ALL specified criteria (AND logic), ordered by id.
func (d *DB) SearchWithFilters(filters SearchFilters, limit int) ([]work.Record, error) {
	var ftsTerms []string
	var args []interface{}

	if filters.Keyword != "" {
		ftsTerms = append(ftsTerms, prepareFTSQuery(filters.Keyword))
	}
	if filters.Title != "" {
		ftsTerms = append(ftsTerms, "title:"+prepareFTSQuery(filters.Title))
	}
	authors := author.ParseQueries(filters.Author)
	for _, q := range authors {
		ftsTerms = append(ftsTerms, "authors_text:"+prepareAuthorQuery(q.Family))
	}

	var query string
	if len(ftsTerms) > 0 {
		query = `SELECT ` + selectWorkFields + `
			FROM works
			WHERE id IN (SELECT id FROM works_fts WHERE works_fts MATCH ?)`
		args = append(args, strings.Join(ftsTerms, " AND "))
	} else {
		query = `SELECT ` + selectWorkFields + ` FROM works WHERE 1=1`
	}

	if filters.YearFrom > 0 {
		query += " AND year >= ?"
		args = append(args, filters.YearFrom)
	}
	if filters.YearTo > 0 {
		query += " AND year <= ?"
		args = append(args, filters.YearTo)
	}
	if filters.WorkType != "" {
		query += " AND work_type = ?"
		args = append(args, string(filters.WorkType))
	}
	if filters.SABPrefix != "" {
		query += " AND sab LIKE ? ESCAPE '\\'"
		args = append(args, escapeLike(filters.SABPrefix)+"%")
	}
	if filters.HasPDF {
		query += " AND has_pdf = 1"
	}

	query += " ORDER BY id"
	// Author names are checked after the query, so the limit applies then.
	if limit > 0 && len(authors) == 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching with filters: %w", err)
	}
	defer rows.Close()

	recs, err := scanWorks(rows)
	if err != nil || len(authors) == 0 {
		return recs, err
	}

	var out []work.Record
	for _, rec := range recs {
		if author.AllMatch(authors, rec.Authors) {
			out = append(out, rec)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// ListAll returns all records ordered by id, optionally limited.
func (d *DB) ListAll(limit int) ([]work.Record, error) {
	return d.SearchWithFilters(SearchFilters{}, limit)
}

// Count returns the total number of indexed records.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM works").Scan(&count)
	return count, err
}

// prepareAuthorQuery prepares an author name for FTS5 search with prefix matching.
func prepareAuthorQuery(name string) string {
	parts := strings.Fields(name)
	terms := make([]string, 0, len(parts))
	for _, part := range parts {
		escaped := strings.ReplaceAll(part, "\"", "\"\"")
		terms = append(terms, "\""+escaped+"\"*")
	}
	// Use OR for multi-word author queries (match any part)
	return "(" + strings.Join(terms, " OR ") + ")"
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~,.") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanWork(s scanner) (*work.Record, error) {
	var recordJSON string
	if err := s.Scan(&recordJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var rec work.Record
	if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
		return nil, fmt.Errorf("parsing record JSON: %w", err)
	}
	return &rec, nil
}

func scanWorks(rows *sql.Rows) ([]work.Record, error) {
	var recs []work.Record
	for rows.Next() {
		rec, err := scanWork(rows)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			recs = append(recs, *rec)
		}
	}
	return recs, rows.Err()
}

func nullableInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
