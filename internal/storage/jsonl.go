// Package storage persists the work catalog as JSONL and indexes it in SQLite.
//
// The JSONL file is the source of truth. The SQLite database is a query
// cache that can always be rebuilt from it.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/atjproject/lawcat/internal/work"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads all records from a JSONL file.
// A missing file is an empty catalog. A corrupt line is reported with its
// line number.
func ReadAll(path string) ([]work.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()

	recs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return recs, nil
}

// Decode reads JSONL records from r, skipping blank lines.
func Decode(r io.Reader) ([]work.Record, error) {
	var recs []work.Record
	scanner := bufio.NewScanner(r)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec work.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		recs = append(recs, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// WriteAll replaces the content of a JSONL file with recs.
// The data is written to a temporary file in the same directory and renamed
// into place, so readers never observe a partially written catalog.
func WriteAll(path string, recs []work.Record) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp catalog file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	w := bufio.NewWriter(tmp)
	for i, rec := range recs {
		data, err := json.Marshal(rec)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
		if _, err := w.Write(data); err != nil {
			tmp.Close()
			return fmt.Errorf("writing record %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing catalog file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing catalog file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing catalog file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("setting catalog file mode: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing catalog file: %w", err)
	}
	return nil
}
