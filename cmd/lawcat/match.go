package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atjproject/lawcat/internal/enrich"
	"github.com/atjproject/lawcat/internal/libris"
	"github.com/atjproject/lawcat/internal/match"
)

var matchApply bool

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().BoolVar(&matchApply, "apply", false, "Attach the selected match to the work")
}

var matchCmd = &cobra.Command{
	Use:   "match <id>",
	Short: "Rank LIBRIS candidates for one work",
	Long: `Look up one work in LIBRIS and show every candidate with its score
breakdown. With --apply the selected candidate is merged into the catalog
exactly as enrich would do.`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

// MatchResponse is the response for the match command.
type MatchResponse struct {
	ID         string         `json:"id"`
	Threshold  float64        `json:"threshold"`
	Candidates []match.Scored `json:"candidates"`
	Outcome    string         `json:"outcome,omitempty"`
}

func runMatch(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	gcfg := mustLoadGlobalConfig()
	cat := mustOpenCatalog(repoRoot)

	rec, ok := cat.Get(args[0])
	if !ok {
		exitWithError(ExitNotFound, "work not found: %s", args[0])
	}

	client := libris.NewClient(librisOptions(cfg, gcfg)...)
	cands, err := client.Candidates(context.Background(), rec)
	if err != nil {
		code := ExitError
		if libris.IsRetryable(err) {
			code = ExitRetryable
		}
		exitWithError(code, "looking up %s: %v", rec.ID, err)
	}

	m := match.New(cfg.Match)
	resp := MatchResponse{
		ID:         rec.ID,
		Threshold:  cfg.Match.Threshold,
		Candidates: m.Rank(rec, cands),
	}

	if matchApply {
		out, outcome := enrich.Reconcile(m, rec, cands)
		if _, err := cat.Upsert(out); err != nil {
			exitWithError(ExitError, "updating %s: %v", rec.ID, err)
		}
		mustSaveCatalog(repoRoot, cat)
		resp.Outcome = string(outcome)
	}

	if humanOutput {
		fmt.Printf("%s  %s (%d)\n", rec.ID, rec.Title, rec.Year)
		if len(resp.Candidates) == 0 {
			fmt.Println("  no candidates")
		}
		for _, s := range resp.Candidates {
			mark := " "
			if s.Accepted {
				mark = "*"
			}
			fmt.Printf(" %s %s\n", mark, match.Describe(s))
		}
		if resp.Outcome != "" {
			fmt.Printf("outcome: %s\n", resp.Outcome)
		}
	} else {
		outputJSON(resp)
	}
	return nil
}
