package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atjproject/lawcat/internal/config"
	"github.com/atjproject/lawcat/internal/git"
	"github.com/atjproject/lawcat/internal/storage"
	"github.com/atjproject/lawcat/internal/work"
)

var diffSince string

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringVar(&diffSince, "since", "HEAD", "Commit to compare the working catalog against")
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show works added, removed or changed since a commit",
	Long: `Compare the working catalog.jsonl with the version committed at --since
(HEAD by default).

Useful for reviewing a crawl or enrichment run before committing it.

Examples:
  lawcat diff --human
  lawcat diff --since HEAD~3`,
	Args: cobra.NoArgs,
	RunE: runDiff,
}

// DiffResult is the response for the diff command.
type DiffResult struct {
	Since   string           `json:"since"`
	Commits []git.CommitInfo `json:"commits,omitempty"`
	Added   []WorkSummary    `json:"added"`
	Removed []WorkSummary    `json:"removed"`
	Changed []DiffChange     `json:"changed"`
}

// DiffChange is one work whose fields changed.
type DiffChange struct {
	WorkSummary
	Fields []string `json:"fields"`
}

func runDiff(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	catalogPath := config.CatalogPath(repoRoot)

	gitRoot, err := git.FindRepoRoot(repoRoot)
	if err != nil {
		if errors.Is(err, git.ErrNotGitRepo) {
			exitWithError(ExitError, "not in a git repository\n  Hint: Initialize with 'git init' in %s", repoRoot)
		}
		exitWithError(ExitError, "finding git repository: %v", err)
	}
	rel, err := git.RelPath(gitRoot, catalogPath)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if !git.IsFileTracked(gitRoot, rel) {
		exitWithError(ExitError, "%s not tracked by git\n  Hint: Run 'git add %s'", rel, rel)
	}

	old, err := git.CatalogAtCommit(gitRoot, rel, diffSince)
	if err != nil {
		if errors.Is(err, git.ErrCommitNotFound) {
			exitWithError(ExitNotFound, "commit not found: %s", diffSince)
		}
		exitWithError(ExitDataError, "%v", err)
	}
	current, err := storage.ReadAll(catalogPath)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	d := git.Compare(old, current)
	result := DiffResult{
		Since:   diffSince,
		Added:   summarize(d.Added),
		Removed: summarize(d.Removed),
		Changed: make([]DiffChange, 0, len(d.Changed)),
	}
	for _, c := range d.Changed {
		s := summarize([]work.Record{c.After})[0]
		result.Changed = append(result.Changed, DiffChange{WorkSummary: s, Fields: c.Fields})
	}
	if diffSince != "HEAD" {
		if result.Commits, err = git.CommitsSince(gitRoot, rel, diffSince); err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}

	if humanOutput {
		printDiffHuman(result, d.IsEmpty())
	} else {
		outputJSON(result)
	}
	return nil
}

func printDiffHuman(result DiffResult, empty bool) {
	if empty {
		fmt.Printf("No changes since %s.\n", result.Since)
		return
	}

	fmt.Printf("Changes since %s", result.Since)
	if len(result.Commits) > 0 {
		fmt.Printf(" (%d commits)", len(result.Commits))
	}
	fmt.Println(":")

	line := func(mark string, s WorkSummary, extra string) {
		fmt.Printf("  %s %s: %s (%s, %d)%s\n", mark, s.ID, truncateString(s.Title, ListTitleMaxLen), s.Authors, s.Year, extra)
	}
	if len(result.Added) > 0 {
		fmt.Printf("\nAdded (%d):\n", len(result.Added))
		for _, s := range result.Added {
			line("+", s, "")
		}
	}
	if len(result.Removed) > 0 {
		fmt.Printf("\nRemoved (%d):\n", len(result.Removed))
		for _, s := range result.Removed {
			line("-", s, "")
		}
	}
	if len(result.Changed) > 0 {
		fmt.Printf("\nChanged (%d):\n", len(result.Changed))
		for _, c := range result.Changed {
			line("~", c.WorkSummary, " ["+strings.Join(c.Fields, ", ")+"]")
		}
	}
}
