package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPathFunctions(t *testing.T) {
	root := "/test/repo"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"LawcatPath", LawcatPath, "/test/repo/.lawcat"},
		{"ConfigPath", ConfigPath, "/test/repo/.lawcat/config.json"},
		{"CatalogPath", CatalogPath, "/test/repo/.lawcat/catalog.jsonl"},
		{"CachePath", CachePath, "/test/repo/.lawcat/cache"},
		{"DBPath", DBPath, "/test/repo/.lawcat/cache/catalog.db"},
		{"SnapshotPath", SnapshotPath, "/test/repo/catalog.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(root)
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, root, got, tt.want)
			}
		})
	}
}

func TestFindRepository(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, LawcatDir), 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindRepository(nested)
	if err != nil {
		t.Fatalf("FindRepository() error = %v", err)
	}
	want, _ := filepath.Abs(tmpDir)
	if got != want {
		t.Errorf("FindRepository() = %q, want %q", got, want)
	}
}

func TestFindRepository_NotFound(t *testing.T) {
	if _, err := FindRepository(t.TempDir()); err == nil {
		t.Error("FindRepository() expected error outside a repository")
	}
}

func TestIsRepository_FileNotDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, LawcatDir), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true when .lawcat is a file")
	}
}

func TestLoadSave_RoundTripKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(LawcatPath(tmpDir), 0755); err != nil {
		t.Fatal(err)
	}
	// Only one field present: the rest must come from Default.
	if err := os.WriteFile(ConfigPath(tmpDir), []byte(`{"workers": 4}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.PDFDir != DefaultPDFs || cfg.MaxDetailLookups != 3 {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Match.Threshold != 0.75 {
		t.Errorf("Match.Threshold = %v, want 0.75", cfg.Match.Threshold)
	}

	cfg.PDFReader = "zathura"
	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	again, err := Load(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if again.PDFReader != "zathura" || again.Workers != 4 {
		t.Errorf("reloaded = %+v", again)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tmpDir := t.TempDir()
	if _, err := Load(tmpDir); err == nil {
		t.Error("Load() expected error for missing config")
	}

	os.Mkdir(LawcatPath(tmpDir), 0755)
	os.WriteFile(ConfigPath(tmpDir), []byte("{not json"), 0644)
	if _, err := Load(tmpDir); err == nil {
		t.Error("Load() expected error for malformed config")
	}
}

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
	if got := Default().Delay(); got != 1500*time.Millisecond {
		t.Errorf("Delay() = %v, want 1.5s", got)
	}
}

func TestSetGet(t *testing.T) {
	tests := []struct {
		key, value string
		wantErr    bool
	}{
		{"pdf_dir", "books", false},
		{"pdf_reader", "evince", false},
		{"pdf_reader", "acrobat", true},
		{"delay_seconds", "2.5", false},
		{"delay_seconds", "-1", true},
		{"workers", "8", false},
		{"workers", "0", true},
		{"workers", "many", true},
		{"max_detail_lookups", "0", false},
		{"match.threshold", "0.8", false},
		{"match.threshold", "1.2", true},
		{"match.author_weight", "0.9", true}, // exceeds title weight
		{"match.nope", "1", true},
		{"colour", "red", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := Default()
			err := cfg.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				if *cfg != *Default() {
					t.Errorf("failed Set modified config: %+v", cfg)
				}
				return
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", tt.key, err)
			}
			if got != tt.value {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.value)
			}
		})
	}
}

func TestGet_UnknownKeyListsValid(t *testing.T) {
	_, err := Default().Get("bogus")
	if err == nil || !strings.Contains(err.Error(), "match.threshold") {
		t.Errorf("Get(bogus) error = %v", err)
	}
}

func TestResolvePDFDir(t *testing.T) {
	cfg := Default()
	if got := cfg.ResolvePDFDir("/lib"); got != "/lib/pdf" {
		t.Errorf("ResolvePDFDir() = %q", got)
	}
	cfg.PDFDir = "/srv/pdf"
	if got := cfg.ResolvePDFDir("/lib"); got != "/srv/pdf" {
		t.Errorf("ResolvePDFDir() absolute = %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/books", filepath.Join(home, "books")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
