package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/atjproject/lawcat/internal/download"
	"github.com/atjproject/lawcat/internal/storage"
	"github.com/atjproject/lawcat/internal/work"
)

var (
	downloadWorkers int
	downloadIDs     []string
)

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().IntVar(&downloadWorkers, "workers", 0, "Concurrent downloads (default from config)")
	downloadCmd.Flags().StringSliceVar(&downloadIDs, "id", nil, "Only download these works")
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download full-text PDFs",
	Long: `Download the PDF of every catalogued work that has one.

Files that already exist and verify as PDFs are skipped. Interrupted
downloads resume from their .part file.`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

// DownloadResult is the response for the download command.
type DownloadResult struct {
	Status     string            `json:"status"`
	Downloaded int               `json:"downloaded"`
	Skipped    int               `json:"skipped"`
	Failed     int               `json:"failed"`
	Bytes      int64             `json:"bytes"`
	Failures   []DownloadFailure `json:"failures,omitempty"`
}

// DownloadFailure describes one work whose PDF could not be fetched.
type DownloadFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

func runDownload(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	gcfg := mustLoadGlobalConfig()
	cat := mustOpenCatalog(repoRoot)

	workers := downloadWorkers
	if workers == 0 {
		workers = cfg.Workers
	}

	recs := selectRecords(cat, downloadIDs)

	opts := []download.Option{download.WithInterval(cfg.Delay())}
	if gcfg.UserAgent != "" {
		opts = append(opts, download.WithUserAgent(gcfg.UserAgent))
	}
	d := download.New(cfg.ResolvePDFDir(repoRoot), opts...)

	ctx, stop := signalContext()
	defer stop()

	var res DownloadResult
	sum, err := d.All(ctx, recs, workers, quietOutput, func(r download.Result) {
		if r.Err != nil {
			slog.Warn("download failed", "id", r.ID, "error", r.Err)
			res.Failures = append(res.Failures, DownloadFailure{ID: r.ID, Error: r.Err.Error()})
		}
		if r.PDF == nil {
			return
		}
		if r.Status == download.StatusFailed {
			// A failed retry must not hide a copy that was fetched earlier.
			if prev, ok := cat.Get(r.ID); ok && prev.PDF != nil && prev.PDF.Downloaded {
				return
			}
		}
		if r.Status == download.StatusDownloaded {
			res.Bytes += r.PDF.SizeBytes
		}
		if _, err := cat.Upsert(work.Record{ID: r.ID, PDF: r.PDF}); err != nil {
			slog.Error("recording pdf", "id", r.ID, "error", err)
		}
	})

	mustSaveCatalog(repoRoot, cat)

	res.Downloaded, res.Skipped, res.Failed = sum.Downloaded, sum.Skipped, sum.Failed
	res.Status = "complete"
	code := ExitSuccess
	switch {
	case errors.Is(err, context.Canceled):
		res.Status = "interrupted"
		code = ExitInterrupted
	case err != nil:
		exitWithError(ExitError, "download: %v", err)
	case res.Failed > 0:
		code = ExitRetryable
	}

	if humanOutput {
		fmt.Printf("Downloaded %d (%s), skipped %d, failed %d\n",
			res.Downloaded, humanize.Bytes(uint64(res.Bytes)), res.Skipped, res.Failed)
		for _, f := range res.Failures {
			fmt.Printf("  %s: %s\n", f.ID, f.Error)
		}
	} else {
		outputJSON(res)
	}
	if code != ExitSuccess {
		os.Exit(code)
	}
	return nil
}

// selectRecords returns the requested works, or every work when ids is
// empty. Unknown ids are fatal.
func selectRecords(cat *storage.Catalog, ids []string) []work.Record {
	if len(ids) == 0 {
		return cat.Load()
	}
	recs := make([]work.Record, 0, len(ids))
	for _, id := range ids {
		rec, ok := cat.Get(id)
		if !ok {
			exitWithError(ExitNotFound, "work not found: %s", id)
		}
		recs = append(recs, rec)
	}
	return recs
}
