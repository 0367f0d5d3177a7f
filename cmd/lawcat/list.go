package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listLimit int

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Maximum number of works (0 = all)")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogued works",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	recs, err := db.ListAll(listLimit)
	if err != nil {
		exitWithError(ExitError, "listing works: %v", err)
	}

	if humanOutput {
		printSummariesHuman(recs)
		if total, err := db.Count(); err == nil && total > len(recs) {
			fmt.Printf("\n(showing %d of %d works)\n", len(recs), total)
		}
	} else {
		outputJSON(summarize(recs))
	}
	return nil
}
