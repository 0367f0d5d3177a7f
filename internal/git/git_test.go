package git

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/atjproject/lawcat/internal/storage"
	"github.com/atjproject/lawcat/internal/work"
)

func TestCompare(t *testing.T) {
	old := []work.Record{
		{ID: "b", Title: "Sakrätt", Year: 1980},
		{ID: "a", Title: "Obligationsrätt", Year: 1956},
		{ID: "gone", Title: "Utgången"},
	}
	current := []work.Record{
		{ID: "a", Title: "Obligationsrätt", Year: 1956, Classification: &work.Classification{SAB: "Oe"}},
		{ID: "b", Title: "Sakrätt", Year: 1980},
		{ID: "new", Title: "Ny bok"},
	}

	d := Compare(old, current)
	if len(d.Added) != 1 || d.Added[0].ID != "new" {
		t.Errorf("Added = %+v", d.Added)
	}
	if len(d.Removed) != 1 || d.Removed[0].ID != "gone" {
		t.Errorf("Removed = %+v", d.Removed)
	}
	if len(d.Changed) != 1 || d.Changed[0].After.ID != "a" {
		t.Fatalf("Changed = %+v", d.Changed)
	}
	if got := d.Changed[0].Fields; len(got) != 1 || got[0] != "classification" {
		t.Errorf("Fields = %v", got)
	}

	if !Compare(current, current).IsEmpty() {
		t.Error("Compare() of identical catalogs is not empty")
	}
}

func TestParseLogOneline(t *testing.T) {
	got := parseLogOneline([]byte("abc123 Crawl juridikbok\n\ndef456 Enrich\n"))
	if len(got) != 2 {
		t.Fatalf("got %d commits", len(got))
	}
	if got[0] != (CommitInfo{SHA: "abc123", Message: "Crawl juridikbok"}) {
		t.Errorf("first = %+v", got[0])
	}
}

func TestRelPath(t *testing.T) {
	got, err := RelPath("/lib", "/lib/.lawcat/catalog.jsonl")
	if err != nil || got != ".lawcat/catalog.jsonl" {
		t.Errorf("RelPath() = %q, %v", got, err)
	}
	if _, err := RelPath("/lib", "/elsewhere/catalog.jsonl"); err == nil {
		t.Error("RelPath() expected error outside the repository")
	}
}

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=t", "GIT_AUTHOR_EMAIL=t@example.org",
		"GIT_COMMITTER_NAME=t", "GIT_COMMITTER_EMAIL=t@example.org",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func TestCatalogAtCommit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	gitCmd(t, dir, "init", "-q")
	path := filepath.Join(dir, "catalog.jsonl")

	if err := storage.WriteAll(path, []work.Record{{ID: "a", Title: "Första"}}); err != nil {
		t.Fatal(err)
	}
	gitCmd(t, dir, "add", "catalog.jsonl")
	gitCmd(t, dir, "commit", "-q", "-m", "first")

	if err := storage.WriteAll(path, []work.Record{{ID: "a", Title: "Första"}, {ID: "b", Title: "Andra"}}); err != nil {
		t.Fatal(err)
	}
	gitCmd(t, dir, "commit", "-q", "-am", "second")

	root, err := FindRepoRoot(dir)
	if err != nil {
		t.Fatalf("FindRepoRoot() error = %v", err)
	}
	if !IsFileTracked(root, "catalog.jsonl") {
		t.Error("IsFileTracked() = false")
	}

	old, err := CatalogAtCommit(root, "catalog.jsonl", "HEAD~1")
	if err != nil {
		t.Fatalf("CatalogAtCommit() error = %v", err)
	}
	if len(old) != 1 {
		t.Errorf("HEAD~1 has %d records, want 1", len(old))
	}

	missing, err := CatalogAtCommit(root, "other.jsonl", "HEAD")
	if err != nil || len(missing) != 0 {
		t.Errorf("absent file = %d records, %v", len(missing), err)
	}

	if _, err := CatalogAtCommit(root, "catalog.jsonl", "nope"); !errors.Is(err, ErrCommitNotFound) {
		t.Errorf("unknown ref error = %v", err)
	}

	commits, err := CommitsSince(root, "catalog.jsonl", "HEAD~1")
	if err != nil || len(commits) != 1 || commits[0].Message != "second" {
		t.Errorf("CommitsSince() = %+v, %v", commits, err)
	}
}

func TestFindRepoRoot_NotGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	if _, err := FindRepoRoot(t.TempDir()); !errors.Is(err, ErrNotGitRepo) {
		t.Errorf("FindRepoRoot() error = %v", err)
	}
}
