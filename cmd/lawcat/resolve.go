package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atjproject/lawcat/internal/config"
	"github.com/atjproject/lawcat/internal/conflict"
	"github.com/atjproject/lawcat/internal/storage"
	"github.com/atjproject/lawcat/internal/work"
)

var (
	resolveDryRun bool
	resolvePrefer string
)

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().BoolVar(&resolveDryRun, "dry-run", false, "Show proposed resolution without modifying files")
	resolveCmd.Flags().StringVar(&resolvePrefer, "prefer", "", "Side that wins disagreeing source fields: ours or theirs")
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve git merge conflicts in catalog.jsonl",
	Long: `Resolve git merge conflicts in catalog.jsonl using what lawcat knows
about works.

- The id, then the ISBN, identifies the same work on both branches
- Source facts set on only one branch are kept
- The better-scoring LIBRIS match and its classification win
- Aliases are united and a downloaded PDF beats a failed download

Source facts that disagree (title, year, edition, ...) are reported and
need --prefer to pick a side.

Examples:
  lawcat resolve
  lawcat resolve --dry-run --human
  lawcat resolve --prefer theirs`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

// ResolveResult is the response for the resolve command.
type ResolveResult struct {
	TotalWorks  int              `json:"total_works"`
	Merged      int              `json:"merged"`
	OursWorks   int              `json:"ours_works"`
	TheirsWorks int              `json:"theirs_works"`
	Operations  []ResolveOp      `json:"operations,omitempty"`
	Unresolved  []UnresolvedInfo `json:"unresolved,omitempty"`
}

// ResolveOp describes what happened to one work.
type ResolveOp struct {
	WorkID string `json:"work_id"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// UnresolvedInfo lists the disagreeing fields of one work.
type UnresolvedInfo struct {
	WorkID    string                   `json:"work_id"`
	Conflicts []conflict.FieldConflict `json:"conflicts"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	prefer := conflict.Side(resolvePrefer)
	switch prefer {
	case "", conflict.SideOurs, conflict.SideTheirs:
	default:
		exitWithError(ExitError, "invalid --prefer %q (use ours or theirs)", resolvePrefer)
	}

	repoRoot := mustFindRepository()
	path := config.CatalogPath(repoRoot)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			exitWithError(ExitDataError, "catalog.jsonl not found at %s", path)
		}
		exitWithError(ExitError, "reading catalog.jsonl: %v", err)
	}

	parsed, err := conflict.ParseString(string(content))
	if err != nil {
		var pe conflict.ParseError
		if errors.As(err, &pe) {
			exitWithError(ExitDataError, "parsing catalog.jsonl: %s", pe.Error())
		}
		exitWithError(ExitError, "parsing catalog.jsonl: %v", err)
	}

	if !parsed.HasConflicts() {
		clean, err := parsed.CleanRecords()
		if err != nil {
			exitWithError(ExitDataError, "parsing catalog.jsonl: %v", err)
		}
		if humanOutput {
			fmt.Println("No conflicts detected in catalog.jsonl.")
		} else {
			outputJSON(ResolveResult{TotalWorks: len(clean)})
		}
		return nil
	}

	result, byRegion := resolveRegions(parsed, prefer)

	recs, err := parsed.Assemble(byRegion)
	if err != nil {
		exitWithError(ExitDataError, "assembling catalog: %v", err)
	}
	result.TotalWorks = len(recs)

	if resolveDryRun {
		reportResolve(result, true)
		return nil
	}

	if len(result.Unresolved) > 0 {
		reportResolve(result, false)
		if humanOutput {
			fmt.Fprintln(os.Stderr, "\nerror: disagreeing source fields require --prefer ours|theirs")
		}
		os.Exit(ExitError)
	}

	if err := storage.WriteAll(path, recs); err != nil {
		exitWithError(ExitError, "writing resolved catalog: %v", err)
	}
	slog.Info("catalog conflicts resolved", "regions", len(parsed.Conflicts), "works", len(recs))

	db := mustOpenDatabase(repoRoot)
	defer db.Close()
	if _, err := db.Rebuild(recs); err != nil {
		exitWithError(ExitDataError, "rebuilding index: %v", err)
	}

	reportResolve(result, false)
	if humanOutput {
		fmt.Printf("\nResolved catalog written to %s\n", path)
	}
	return nil
}

// resolveRegions plans every conflict region. Works with disagreeing source
// fields are taken from prefer when it is set and reported otherwise, in
// which case ours stands in for them.
func resolveRegions(parsed *conflict.ParseResult, prefer conflict.Side) (ResolveResult, [][]work.Record) {
	var result ResolveResult
	byRegion := make([][]work.Record, len(parsed.Conflicts))

	for i, region := range parsed.Conflicts {
		matched := conflict.MatchWorks(region)
		var recs []work.Record

		for _, m := range matched.Matches {
			plan := conflict.Resolve(m)
			result.Operations = append(result.Operations, ResolveOp{
				WorkID: plan.WorkID,
				Action: string(plan.Action),
				Reason: plan.Reason,
			})

			switch plan.Action {
			case conflict.ActionConflict:
				if prefer == "" {
					result.Unresolved = append(result.Unresolved, UnresolvedInfo{
						WorkID:    plan.WorkID,
						Conflicts: plan.Conflicts,
					})
				} else {
					result.Merged++
				}
			case conflict.ActionMerge:
				result.Merged++
			}
			recs = append(recs, conflict.ApplyResolution(m, plan, prefer))
		}

		for _, rec := range matched.OursOnly {
			recs = append(recs, rec)
			result.OursWorks++
			result.Operations = append(result.Operations, ResolveOp{
				WorkID: rec.ID,
				Action: string(conflict.ActionAddOurs),
				Reason: "work only in ours",
			})
		}
		for _, rec := range matched.TheirsOnly {
			recs = append(recs, rec)
			result.TheirsWorks++
			result.Operations = append(result.Operations, ResolveOp{
				WorkID: rec.ID,
				Action: string(conflict.ActionAddTheirs),
				Reason: "work only in theirs",
			})
		}

		byRegion[i] = recs
	}

	return result, byRegion
}

func reportResolve(result ResolveResult, dryRun bool) {
	if !humanOutput {
		outputJSON(result)
		return
	}

	if dryRun {
		fmt.Println("Dry run - no changes made")
		fmt.Println()
	}

	fmt.Println("Resolution summary:")
	fmt.Printf("  Total works: %d\n", result.TotalWorks)
	if result.Merged > 0 {
		fmt.Printf("  Merged: %d\n", result.Merged)
	}
	if result.OursWorks > 0 {
		fmt.Printf("  Added from ours: %d\n", result.OursWorks)
	}
	if result.TheirsWorks > 0 {
		fmt.Printf("  Added from theirs: %d\n", result.TheirsWorks)
	}

	if len(result.Operations) > 0 {
		fmt.Println()
		fmt.Println("Operations:")
		for _, op := range result.Operations {
			fmt.Printf("  %s: %s (%s)\n", op.WorkID, op.Action, op.Reason)
		}
	}

	if len(result.Unresolved) > 0 {
		fmt.Println()
		fmt.Printf("Unresolved conflicts (%d):\n", len(result.Unresolved))
		for _, u := range result.Unresolved {
			var parts []string
			for _, c := range u.Conflicts {
				parts = append(parts, fmt.Sprintf("%s %q vs %q", c.FieldName, c.OursValue, c.TheirsValue))
			}
			fmt.Printf("  %s: %s\n", u.WorkID, strings.Join(parts, "; "))
		}
	}
}
