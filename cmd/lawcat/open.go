package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atjproject/lawcat/internal/pdf"
)

func init() {
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:   "open <id>...",
	Short: "Open works' PDFs in the configured viewer",
	Long: `Open the downloaded PDF of one or more works in the viewer named by
pdf_reader.

Examples:
  lawcat open 4711
  lawcat open 4711 4712`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOpen,
}

func runOpen(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	cat := mustOpenCatalog(repoRoot)

	opener := pdf.NewOpener(cfg.ResolvePDFDir(repoRoot), cfg.PDFReader)

	var opened []string
	for _, rec := range selectRecords(cat, args) {
		if rec.PDF == nil || !rec.PDF.Downloaded {
			exitWithError(ExitNotFound, "no downloaded PDF for %s\n  Hint: run 'lawcat download --id %s'", rec.ID, rec.ID)
		}
		path, err := opener.ResolvePath(rec.PDF.Path)
		if err != nil {
			exitWithError(ExitNotFound, "%s: %v", rec.ID, err)
		}
		if err := opener.Open(path); err != nil {
			exitWithError(ExitError, "opening %s: %v", path, err)
		}
		opened = append(opened, path)
	}

	if humanOutput {
		for _, p := range opened {
			fmt.Printf("Opened %s\n", p)
		}
	} else {
		outputJSON(map[string]any{"status": "opened", "paths": opened})
	}
	return nil
}
