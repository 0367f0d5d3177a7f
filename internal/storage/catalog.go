package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/atjproject/lawcat/internal/merge"
	"github.com/atjproject/lawcat/internal/work"
)

// Catalog errors.
var (
	ErrNotFound  = errors.New("record not found")
	ErrMissingID = errors.New("record has no id")
)

// Action describes what an upsert did to the catalog.
type Action string

// Upsert outcomes.
const (
	ActionNew       Action = "new"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
)

// DeriveFunc recomputes derived fields of a record after a merge.
type DeriveFunc func(work.Record) work.Record

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithDerive sets the function applied to every record after it is merged.
func WithDerive(fn DeriveFunc) CatalogOption {
	return func(c *Catalog) {
		c.derive = fn
	}
}

// Catalog is the in-memory working set of the JSONL catalog file.
// It is safe for concurrent use. Records are kept in insertion order and
// are never deleted.
type Catalog struct {
	path   string
	derive DeriveFunc

	mu      sync.Mutex
	records []work.Record
	index   map[string]int
	dirty   bool
}

// OpenCatalog loads the catalog at path. A missing file yields an empty catalog.
func OpenCatalog(path string, opts ...CatalogOption) (*Catalog, error) {
	recs, err := ReadAll(path)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		path:  path,
		index: make(map[string]int, len(recs)),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, rec := range recs {
		if rec.ID == "" {
			return nil, fmt.Errorf("loading %s: %w", path, ErrMissingID)
		}
		if i, ok := c.index[rec.ID]; ok {
			// Later lines win, matching append-only history.
			c.records[i] = normalize(rec)
			continue
		}
		c.index[rec.ID] = len(c.records)
		c.records = append(c.records, normalize(rec))
	}
	return c, nil
}

// Path returns the JSONL file backing the catalog.
func (c *Catalog) Path() string {
	return c.path
}

// Load returns a copy of every record in catalog order.
func (c *Catalog) Load() []work.Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]work.Record, len(c.records))
	for i, rec := range c.records {
		out[i] = rec.Clone()
	}
	return out
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Get returns a copy of the record with the given id.
func (c *Catalog) Get(id string) (work.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return work.Record{}, false
	}
	return c.records[i].Clone(), true
}

// Upsert inserts rec or merges it into the record with the same id.
// Upserting a record identical to the stored one reports ActionUnchanged
// and leaves the catalog untouched.
func (c *Catalog) Upsert(rec work.Record) (Action, error) {
	if rec.ID == "" {
		return "", ErrMissingID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[rec.ID]
	if !ok {
		c.index[rec.ID] = len(c.records)
		c.records = append(c.records, c.finish(rec.Clone()))
		c.dirty = true
		return ActionNew, nil
	}

	existing := c.records[i]
	merged := c.finish(merge.Incremental(existing, rec))

	same, err := sameRecord(existing, merged)
	if err != nil {
		return "", fmt.Errorf("comparing %s: %w", rec.ID, err)
	}
	if same {
		return ActionUnchanged, nil
	}
	c.records[i] = merged
	c.dirty = true
	return ActionUpdated, nil
}

// AppendAlias adds an operator-curated alias to a record. Adding an alias
// the record already has is a no-op.
func (c *Catalog) AppendAlias(id, alias string) (Action, error) {
	if alias == "" {
		return "", fmt.Errorf("alias must not be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return "", fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	for _, a := range c.records[i].Aliases {
		if a == alias {
			return ActionUnchanged, nil
		}
	}
	c.records[i].Aliases = append(c.records[i].Aliases, alias)
	c.dirty = true
	return ActionUpdated, nil
}

// Dirty reports whether there are changes not yet saved.
func (c *Catalog) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Save writes the catalog to disk atomically.
func (c *Catalog) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}
	if err := WriteAll(c.path, c.records); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// finish applies the derive function and normalizes the record.
// Callers must hold c.mu.
func (c *Catalog) finish(rec work.Record) work.Record {
	if c.derive != nil {
		rec = c.derive(rec)
	}
	return normalize(rec)
}

// normalize gives empty collections a stable encoding.
func normalize(rec work.Record) work.Record {
	if rec.Aliases == nil {
		rec.Aliases = []string{}
	}
	return rec
}

func sameRecord(a, b work.Record) (bool, error) {
	ja, err := json.Marshal(a)
	if err != nil {
		return false, err
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ja, jb), nil
}
