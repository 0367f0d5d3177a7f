// Package git reads the catalog as committed in the surrounding git
// repository so working-tree changes can be reviewed before committing.
package git

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/atjproject/lawcat/internal/storage"
	"github.com/atjproject/lawcat/internal/work"
)

// ErrNotGitRepo indicates the directory is not a git repository.
var ErrNotGitRepo = errors.New("not a git repository")

// ErrCommitNotFound indicates the specified commit does not exist.
var ErrCommitNotFound = errors.New("commit not found")

// CommitInfo represents information about a git commit.
type CommitInfo struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

func run(dir string, args ...string) ([]byte, error) {
	return exec.Command("git", append([]string{"-C", dir}, args...)...).Output()
}

// FindRepoRoot finds the root of the git repository containing path.
func FindRepoRoot(path string) (string, error) {
	out, err := run(path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", ErrNotGitRepo
	}
	return strings.TrimSpace(string(out)), nil
}

// RelPath returns path relative to the git root in slash form, as git
// expects in "<rev>:<path>" specs.
func RelPath(gitRoot, path string) (string, error) {
	rel, err := filepath.Rel(gitRoot, path)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside the git repository %s", path, gitRoot)
	}
	return filepath.ToSlash(rel), nil
}

// ValidateCommit resolves a commit reference (SHA, HEAD~N, branch, tag) to
// its full SHA.
func ValidateCommit(gitRoot, ref string) (string, error) {
	out, err := run(gitRoot, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		return "", ErrCommitNotFound
	}
	return strings.TrimSpace(string(out)), nil
}

// IsFileTracked reports whether rel is tracked by git.
func IsFileTracked(gitRoot, rel string) bool {
	out, err := run(gitRoot, "ls-files", "--", rel)
	return err == nil && strings.TrimSpace(string(out)) != ""
}

// CatalogAtCommit returns the catalog records stored at rel in commit ref.
// A file absent from that commit yields an empty catalog.
func CatalogAtCommit(gitRoot, rel, ref string) ([]work.Record, error) {
	sha, err := ValidateCommit(gitRoot, ref)
	if err != nil {
		return nil, err
	}

	out, err := run(gitRoot, "show", sha+":"+rel)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s at %s: %w", rel, ref, err)
	}

	recs, err := storage.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", rel, ref, err)
	}
	return recs, nil
}

// CommitsSince lists the commits after ref up to HEAD that touched rel,
// newest first.
func CommitsSince(gitRoot, rel, ref string) ([]CommitInfo, error) {
	out, err := run(gitRoot, "log", "--oneline", ref+"..HEAD", "--", rel)
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}
	return parseLogOneline(out), nil
}

func parseLogOneline(data []byte) []CommitInfo {
	var commits []CommitInfo
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		sha, msg, _ := strings.Cut(line, " ")
		commits = append(commits, CommitInfo{SHA: sha, Message: msg})
	}
	return commits
}
