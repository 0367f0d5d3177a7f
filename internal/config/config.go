// Package config handles repository and global configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/atjproject/lawcat/internal/match"
)

// Config represents repository configuration stored in .lawcat/config.json.
type Config struct {
	PDFDir           string       `json:"pdf_dir"`              // Relative to the repository root unless absolute
	PDFReader        string       `json:"pdf_reader,omitempty"` // Reader preference: system, skim, zathura, etc.
	DelaySeconds     float64      `json:"delay_seconds"`        // Pause between requests to one host
	Workers          int          `json:"workers"`
	MaxDetailLookups int          `json:"max_detail_lookups"`
	Match            match.Config `json:"match"`
}

const (
	LawcatDir    = ".lawcat"
	ConfigFile   = "config.json"
	CatalogFile  = "catalog.jsonl"
	CacheDir     = "cache"
	DBFile       = "catalog.db"
	SnapshotFile = "catalog.json"
	DefaultPDFs  = "pdf"
	MaxWorkers   = 16
)

// ValidReaders lists the supported PDF reader values.
var ValidReaders = []string{"system", "skim", "preview", "zathura", "evince", "okular"}

// Default returns the configuration written by `lawcat init`.
func Default() *Config {
	return &Config{
		PDFDir:           DefaultPDFs,
		DelaySeconds:     1.5,
		Workers:          2,
		MaxDetailLookups: 3,
		Match:            match.DefaultConfig(),
	}
}

// LawcatPath returns the path to the .lawcat directory from a root path.
func LawcatPath(root string) string {
	return filepath.Join(root, LawcatDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, LawcatDir, ConfigFile)
}

// CatalogPath returns the path to catalog.jsonl from a root path.
func CatalogPath(root string) string {
	return filepath.Join(root, LawcatDir, CatalogFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, LawcatDir, CacheDir)
}

// DBPath returns the path to catalog.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, LawcatDir, CacheDir, DBFile)
}

// SnapshotPath returns the default path of the exported catalog snapshot.
func SnapshotPath(root string) string {
	return filepath.Join(root, SnapshotFile)
}

// IsRepository checks if the given path contains a lawcat repository.
func IsRepository(root string) bool {
	info, err := os.Stat(LawcatPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a lawcat repository.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a lawcat repository (no .lawcat directory found)")
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root. Fields
// missing from the file keep their defaults.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if err := ValidatePDFReader(c.PDFReader); err != nil {
		return err
	}
	if err := ValidateDelay(c.DelaySeconds); err != nil {
		return err
	}
	if err := ValidateWorkers(c.Workers); err != nil {
		return err
	}
	if c.MaxDetailLookups < 0 {
		return fmt.Errorf("max_detail_lookups must be non-negative")
	}
	if err := c.Match.Validate(); err != nil {
		return fmt.Errorf("match: %w", err)
	}
	return nil
}

// Delay returns the request interval as a duration.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.DelaySeconds * float64(time.Second))
}

// ResolvePDFDir returns the absolute PDF directory for the repository.
func (c *Config) ResolvePDFDir(root string) string {
	dir := c.PDFDir
	if dir == "" {
		dir = DefaultPDFs
	}
	dir = ExpandPath(dir)
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"pdf_dir",
	"pdf_reader",
	"delay_seconds",
	"workers",
	"max_detail_lookups",
	"match.title_weight",
	"match.author_weight",
	"match.year_weight",
	"match.year_near_credit",
	"match.threshold",
}

// Get returns the value stored under key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "pdf_dir":
		return c.PDFDir, nil
	case "pdf_reader":
		return c.PDFReader, nil
	case "delay_seconds":
		return formatFloat(c.DelaySeconds), nil
	case "workers":
		return strconv.Itoa(c.Workers), nil
	case "max_detail_lookups":
		return strconv.Itoa(c.MaxDetailLookups), nil
	}
	if f := c.matchField(key); f != nil {
		return formatFloat(*f), nil
	}
	return "", unknownKey(key)
}

// Set parses value and stores it under key. The result is validated as a
// whole so that a weight change cannot leave the matcher unusable.
func (c *Config) Set(key, value string) error {
	next := *c
	switch key {
	case "pdf_dir":
		next.PDFDir = value
	case "pdf_reader":
		next.PDFReader = value
	case "delay_seconds":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("delay_seconds: %w", err)
		}
		next.DelaySeconds = f
	case "workers", "max_detail_lookups":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if key == "workers" {
			next.Workers = n
		} else {
			next.MaxDetailLookups = n
		}
	default:
		f := next.matchField(key)
		if f == nil {
			return unknownKey(key)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*f = v
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func (c *Config) matchField(key string) *float64 {
	name, ok := strings.CutPrefix(key, "match.")
	if !ok {
		return nil
	}
	switch name {
	case "title_weight":
		return &c.Match.TitleWeight
	case "author_weight":
		return &c.Match.AuthorWeight
	case "year_weight":
		return &c.Match.YearWeight
	case "year_near_credit":
		return &c.Match.YearNearCredit
	case "threshold":
		return &c.Match.Threshold
	}
	return nil
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key: %s (valid: %s)", key, strings.Join(Keys, ", "))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ValidatePDFReader checks that the reader value is valid.
func ValidatePDFReader(reader string) error {
	if reader == "" {
		return nil // Empty defaults to "system"
	}
	if slices.Contains(ValidReaders, reader) {
		return nil
	}
	return fmt.Errorf("invalid pdf_reader: %s (valid: %v)", reader, ValidReaders)
}

// ValidateDelay rejects negative request intervals.
func ValidateDelay(seconds float64) error {
	if seconds < 0 {
		return fmt.Errorf("delay_seconds must be non-negative, got %v", seconds)
	}
	return nil
}

// ValidateWorkers checks the enrichment and download worker count.
func ValidateWorkers(n int) error {
	if n < 1 || n > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d, got %d", MaxWorkers, n)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
