package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/atjproject/lawcat/internal/config"
	"github.com/atjproject/lawcat/internal/crawl"
	"github.com/atjproject/lawcat/internal/progress"
	"github.com/atjproject/lawcat/internal/storage"
)

// crawlSaveEvery is how many harvested works may be held in memory before
// the catalog is written out.
const crawlSaveEvery = 50

var crawlMax int

func init() {
	rootCmd.AddCommand(crawlCmd)
	crawlCmd.Flags().IntVar(&crawlMax, "max", 0, "Stop after this many works (0 = whole catalog)")
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Harvest works from the juridikbok.se catalog",
	Long: `Walk the juridikbok.se listing pages, read every work's detail page and
merge the result into the catalog. Existing enrichment, aliases and PDF
information are kept. Progress is saved periodically, so an interrupted
crawl can simply be run again.`,
	Args: cobra.NoArgs,
	RunE: runCrawl,
}

// CrawlResult is the response for the crawl command.
type CrawlResult struct {
	Status       string `json:"status"`
	Harvested    int    `json:"harvested"`
	New          int    `json:"new"`
	Updated      int    `json:"updated"`
	Unchanged    int    `json:"unchanged"`
	DetailErrors int    `json:"detail_errors"`
	Total        int    `json:"total"`
}

func runCrawl(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	gcfg := mustLoadGlobalConfig()
	cat := mustOpenCatalog(repoRoot)

	ctx, stop := signalContext()
	defer stop()

	client := crawl.NewClient(crawlOptions(cfg, gcfg)...)
	bar := progress.New(crawlMax, "crawl", quietOutput)

	var res CrawlResult
	n, err := client.Harvest(ctx, crawlMax, func(e crawl.Entry, detailErr error) error {
		defer bar.Increment()
		if detailErr != nil {
			res.DetailErrors++
			slog.Warn("detail page unavailable, keeping listing data", "id", e.ID, "error", detailErr)
		}

		action, err := cat.Upsert(e.Record())
		if err != nil {
			return err
		}
		slog.Debug("harvested", "id", e.ID, "action", action)
		switch action {
		case storage.ActionNew:
			res.New++
		case storage.ActionUpdated:
			res.Updated++
		default:
			res.Unchanged++
		}

		if (res.New+res.Updated+res.Unchanged)%crawlSaveEvery == 0 && cat.Dirty() {
			if err := cat.Save(); err != nil {
				return fmt.Errorf("saving catalog: %w", err)
			}
		}
		return nil
	})
	bar.Finish()
	res.Harvested = n

	// Partial progress is kept even when the crawl stops early.
	mustSaveCatalog(repoRoot, cat)
	res.Total = cat.Len()

	slog.Info("crawl finished",
		"harvested", humanize.Comma(int64(n)),
		"new", humanize.Comma(int64(res.New)),
		"total", humanize.Comma(int64(res.Total)),
	)

	code := ExitSuccess
	res.Status = "complete"
	switch {
	case errors.Is(err, context.Canceled):
		res.Status = "interrupted"
		code = ExitInterrupted
	case err != nil:
		exitWithError(ExitError, "crawl stopped after %d works: %v", n, err)
	}

	if humanOutput {
		fmt.Printf("Harvested %s works (%d new, %d updated, %d unchanged, %d without detail page); catalog holds %s\n",
			humanize.Comma(int64(n)), res.New, res.Updated, res.Unchanged, res.DetailErrors, humanize.Comma(int64(res.Total)))
	} else {
		outputJSON(res)
	}
	if code != ExitSuccess {
		os.Exit(code)
	}
	return nil
}

func crawlOptions(cfg *config.Config, gcfg *config.GlobalConfig) []crawl.ClientOption {
	opts := []crawl.ClientOption{crawl.WithInterval(cfg.Delay())}
	if gcfg.UserAgent != "" {
		opts = append(opts, crawl.WithUserAgent(gcfg.UserAgent))
	}
	if gcfg.JuridikbokBaseURL != "" {
		opts = append(opts, crawl.WithBaseURL(gcfg.JuridikbokBaseURL))
	}
	return opts
}
