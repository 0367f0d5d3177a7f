package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atjproject/lawcat/internal/citation"
	"github.com/atjproject/lawcat/internal/clipboard"
	"github.com/atjproject/lawcat/internal/storage"
)

var citeCopy string

func init() {
	rootCmd.AddCommand(citeCmd)
	citeCmd.Flags().StringVar(&citeCopy, "copy", "", "Copy the long or short citation to the clipboard")
	citeCmd.Flags().Lookup("copy").NoOptDefVal = "long"
}

var citeCmd = &cobra.Command{
	Use:   "cite [id]",
	Short: "Show or recompute citations",
	Long: `With an id, print the long and short citation of that work.

Without an id, recompute the citations of every work in the catalog and
report how many changed. Works missing a title or year keep a
citation_error instead of a citation.

Examples:
  lawcat cite 4711 --human
  lawcat cite 4711 --copy         # long form
  lawcat cite 4711 --copy=short`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCite,
}

// CiteResponse is the response for a single-work cite.
type CiteResponse struct {
	ID     string `json:"id"`
	Long   string `json:"long,omitempty"`
	Short  string `json:"short,omitempty"`
	Error  string `json:"error,omitempty"`
	Copied string `json:"copied,omitempty"`
}

// CiteAllResult is the response for recomputing every citation.
type CiteAllResult struct {
	Status  string `json:"status"`
	Total   int    `json:"total"`
	Updated int    `json:"updated"`
	Errors  int    `json:"errors"`
}

func runCite(cmd *cobra.Command, args []string) error {
	if citeCopy != "" && citeCopy != "long" && citeCopy != "short" {
		exitWithError(ExitError, "invalid --copy %q (use long or short)", citeCopy)
	}
	if citeCopy != "" && len(args) == 0 {
		exitWithError(ExitError, "--copy needs a work id")
	}

	repoRoot := mustFindRepository()
	cat := mustOpenCatalog(repoRoot)

	if len(args) == 1 {
		rec, ok := cat.Get(args[0])
		if !ok {
			exitWithError(ExitNotFound, "work not found: %s", args[0])
		}
		resp := CiteResponse{ID: rec.ID}
		c, err := citation.Format(rec)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Long, resp.Short = c.Long, c.Short
		}

		if citeCopy != "" && resp.Error == "" {
			text := resp.Long
			if citeCopy == "short" {
				text = resp.Short
			}
			if err := clipboard.Copy(text); err != nil {
				exitWithError(ExitError, "copying to clipboard: %v", err)
			}
			resp.Copied = citeCopy
		}

		if humanOutput {
			if resp.Error != "" {
				fmt.Printf("%s: %s\n", rec.ID, resp.Error)
			} else {
				fmt.Println(resp.Long)
				fmt.Println(resp.Short)
			}
			if resp.Copied != "" {
				fmt.Printf("(%s form copied to clipboard)\n", resp.Copied)
			}
		} else {
			outputJSON(resp)
		}
		return nil
	}

	res := CiteAllResult{Status: "recomputed"}
	for _, rec := range cat.Load() {
		res.Total++
		action, err := cat.Upsert(citation.Apply(rec))
		if err != nil {
			exitWithError(ExitError, "updating %s: %v", rec.ID, err)
		}
		if action == storage.ActionUpdated {
			res.Updated++
		}
		if out, _ := cat.Get(rec.ID); out.CitationError != "" {
			res.Errors++
		}
	}
	mustSaveCatalog(repoRoot, cat)

	if humanOutput {
		fmt.Printf("Recomputed %d citations: %d changed, %d works lack a title or year\n", res.Total, res.Updated, res.Errors)
	} else {
		outputJSON(res)
	}
	return nil
}
