package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atjproject/lawcat/internal/names"
	"github.com/atjproject/lawcat/internal/storage"
	"github.com/atjproject/lawcat/internal/work"
)

func init() {
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <catalog.json>",
	Short: "Merge a catalog.json snapshot into the catalog",
	Long: `Merge the books of a catalog.json snapshot (as written by 'lawcat export
-o .') into the catalog. Works are merged by id with the same rules as a
crawl, so running an import twice changes nothing. Books without an id get
one derived from title and authors.

Example:
  lawcat import ~/old-library/catalog.json --human`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// ImportResult is the response for the import command.
type ImportResult struct {
	Status    string `json:"status"`
	Imported  int    `json:"imported"`
	New       int    `json:"new"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Skipped   int    `json:"skipped"`
	Total     int    `json:"total"`
}

func runImport(cmd *cobra.Command, args []string) error {
	snap, err := storage.ReadSnapshot(args[0])
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	repoRoot := mustFindRepository()
	cat := mustOpenCatalog(repoRoot)

	res := ImportResult{Status: "imported"}
	for _, rec := range snap.Books {
		rec, ok := normalizeImported(rec)
		if !ok {
			res.Skipped++
			slog.Warn("skipping untitled book in snapshot", "authors", rec.AuthorsRaw)
			continue
		}
		action, err := cat.Upsert(rec)
		if err != nil {
			exitWithError(ExitError, "importing %s: %v", rec.ID, err)
		}
		res.Imported++
		switch action {
		case storage.ActionNew:
			res.New++
		case storage.ActionUpdated:
			res.Updated++
		default:
			res.Unchanged++
		}
	}
	mustSaveCatalog(repoRoot, cat)
	res.Total = cat.Len()

	slog.Info("snapshot imported", "path", args[0], "source", snap.Metadata.Source, "books", len(snap.Books))
	if humanOutput {
		fmt.Printf("Imported %d works (%d new, %d updated, %d unchanged, %d skipped); catalog holds %d\n",
			res.Imported, res.New, res.Updated, res.Unchanged, res.Skipped, res.Total)
	} else {
		outputJSON(res)
	}
	return nil
}

// normalizeImported fills in what older snapshots may lack: an id and the
// parsed author list. Books without a title cannot be keyed and are refused.
func normalizeImported(rec work.Record) (work.Record, bool) {
	if strings.TrimSpace(rec.Title) == "" && rec.ID == "" {
		return rec, false
	}
	if rec.ID == "" {
		rec.ID = work.DeriveID(rec.Title, rec.AuthorsRaw)
	}
	if len(rec.Authors) == 0 && strings.TrimSpace(rec.AuthorsRaw) != "" {
		rec.Authors = names.Parse(rec.AuthorsRaw)
	}
	return rec, true
}
