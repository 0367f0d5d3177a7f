package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atjproject/lawcat/internal/config"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query index from the catalog",
	Long: `Rebuild the SQLite query index from catalog.jsonl.

Use this after pulling changes from git or if the index becomes corrupted.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status string `json:"status"`
	Works  int    `json:"works"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	n, err := db.RebuildFromJSONL(config.CatalogPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding index: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query index with %d works\n", n)
	} else {
		outputJSON(RebuildResult{Status: "rebuilt", Works: n})
	}
	return nil
}
