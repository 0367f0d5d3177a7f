package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atjproject/lawcat/internal/config"
	"github.com/atjproject/lawcat/internal/enrich"
	"github.com/atjproject/lawcat/internal/libris"
	"github.com/atjproject/lawcat/internal/match"
	"github.com/atjproject/lawcat/internal/work"
)

var (
	enrichWorkers int
	enrichAll     bool
	enrichIDs     []string
)

func init() {
	rootCmd.AddCommand(enrichCmd)
	enrichCmd.Flags().IntVar(&enrichWorkers, "workers", 0, "Concurrent LIBRIS lookups (default from config)")
	enrichCmd.Flags().BoolVar(&enrichAll, "all", false, "Look up works that already have a match as well")
	enrichCmd.Flags().StringSliceVar(&enrichIDs, "id", nil, "Only enrich these works")
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Match works against LIBRIS and attach classification data",
	Long: `Look up every work in LIBRIS, score the candidates and attach the best
match above the threshold together with its classification and subject
terms. Citations are recomputed for every work touched.

By default only works without a match are looked up. With --all, works
that already have one are looked up again; an existing match is only
replaced by one that scores at least as well.`,
	Args: cobra.NoArgs,
	RunE: runEnrich,
}

func runEnrich(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	gcfg := mustLoadGlobalConfig()
	cat := mustOpenCatalog(repoRoot)

	workers := enrichWorkers
	if workers == 0 {
		workers = cfg.Workers
	}
	if err := config.ValidateWorkers(workers); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	var todo []work.Record
	for _, rec := range selectRecords(cat, enrichIDs) {
		if enrichAll || len(enrichIDs) > 0 || !rec.IsEnriched() {
			todo = append(todo, rec)
		}
	}

	runner := &enrich.Runner{
		Lookup:    libris.NewClient(librisOptions(cfg, gcfg)...),
		Matcher:   match.New(cfg.Match),
		Store:     cat,
		Workers:   workers,
		Retryable: libris.IsRetryable,
		Quiet:     quietOutput,
	}

	ctx, stop := signalContext()
	defer stop()

	report, err := runner.Run(ctx, todo)
	mustSaveCatalog(repoRoot, cat)

	code := ExitSuccess
	switch {
	case errors.Is(err, context.Canceled):
		code = ExitInterrupted
	case err != nil:
		exitWithError(ExitError, "enrich: %v", err)
	case report.Retryable() > 0:
		code = ExitRetryable
	}

	if humanOutput {
		fmt.Printf("Enriched %d works: %d matched, %d kept, %d without match, %d failed (%d retryable); %d updated\n",
			report.Total, report.Matched, report.Kept, report.NoMatch, report.Failed, report.Retryable(), report.Updated)
		if report.CitationErrors > 0 {
			fmt.Printf("%d works lack the data needed for a citation\n", report.CitationErrors)
		}
		for _, f := range report.Failures {
			fmt.Printf("  %s: %s\n", f.ID, f.Error)
		}
	} else {
		outputJSON(report)
	}
	if code != ExitSuccess {
		os.Exit(code)
	}
	return nil
}

func librisOptions(cfg *config.Config, gcfg *config.GlobalConfig) []libris.ClientOption {
	opts := []libris.ClientOption{
		libris.WithInterval(cfg.Delay()),
		libris.WithMaxDetailLookups(cfg.MaxDetailLookups),
	}
	if gcfg.UserAgent != "" {
		opts = append(opts, libris.WithUserAgent(gcfg.UserAgent))
	}
	if gcfg.LibrisBaseURL != "" {
		opts = append(opts, libris.WithBaseURL(gcfg.LibrisBaseURL))
	}
	return opts
}
