package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/atjproject/lawcat/internal/config"
	"github.com/atjproject/lawcat/internal/export"
	"github.com/atjproject/lawcat/internal/storage"
	"github.com/atjproject/lawcat/internal/work"
)

var (
	exportFormat string
	exportKeys   string
	exportOutput string
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format: json or bibtex")
	exportCmd.Flags().StringVar(&exportKeys, "keys", "", "Export only specified IDs (comma-separated)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout (bibtex appends new entries)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog as a JSON snapshot or BibTeX",
	Long: `Export the catalog.

The json format writes a snapshot with harvest metadata and every work.
The bibtex format writes one entry per work keyed by its id; with --output
only works not already present in that file (by ISBN or key) are appended.

Examples:
  lawcat export -o catalog.json
  lawcat export --format bibtex --keys 4711,4712
  lawcat export --format bibtex -o lit.bib`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cat := mustOpenCatalog(repoRoot)

	var recs []work.Record
	if exportKeys != "" {
		recs = selectRecords(cat, splitKeys(exportKeys))
	} else {
		recs = cat.Load()
	}

	switch exportFormat {
	case "json":
		exportSnapshot(repoRoot, recs)
	case "bibtex", "bib":
		exportBibTeX(recs)
	default:
		exitWithError(ExitError, "unknown format: %s (valid: json, bibtex)", exportFormat)
	}
	return nil
}

func exportSnapshot(repoRoot string, recs []work.Record) {
	meta := storage.NewSnapshotMeta(recs, time.Now())
	if exportOutput == "" {
		outputJSON(storage.Snapshot{Metadata: meta, Books: recs})
		return
	}

	path := exportOutput
	if path == "." {
		path = config.SnapshotPath(repoRoot)
	}
	if err := storage.WriteSnapshot(path, recs, meta); err != nil {
		exitWithError(ExitError, "writing snapshot: %v", err)
	}
	if humanOutput {
		fmt.Printf("Wrote %d works to %s\n", len(recs), path)
	} else {
		outputJSON(StatusResponse{Status: "exported", Path: path})
	}
}

func exportBibTeX(recs []work.Record) {
	// BibTeX on stdout is always text, never JSON.
	if exportOutput == "" {
		fmt.Print(export.ToBibTeXList(recs))
		return
	}

	idx, err := export.ParseBibTeXFile(exportOutput)
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", exportOutput, err)
	}
	var fresh []work.Record
	for _, rec := range recs {
		if idx.HasEntry(rec.ID, rec.ISBN) {
			continue
		}
		idx.Add(rec.ID, rec.ISBN)
		fresh = append(fresh, rec)
	}
	if len(fresh) > 0 {
		if err := export.AppendToBibFile(exportOutput, export.ToBibTeXList(fresh)); err != nil {
			exitWithError(ExitError, "writing %s: %v", exportOutput, err)
		}
	}

	if humanOutput {
		fmt.Printf("Appended %d of %d works to %s\n", len(fresh), len(recs), exportOutput)
	} else {
		outputJSON(map[string]any{"status": "exported", "path": exportOutput, "appended": len(fresh), "skipped": len(recs) - len(fresh)})
	}
}

func splitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

