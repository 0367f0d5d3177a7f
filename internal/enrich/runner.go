package enrich

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/atjproject/lawcat/internal/match"
	"github.com/atjproject/lawcat/internal/progress"
	"github.com/atjproject/lawcat/internal/storage"
	"github.com/atjproject/lawcat/internal/work"
)

// Lookup finds external candidates for a record.
type Lookup interface {
	Candidates(ctx context.Context, rec work.Record) ([]work.Candidate, error)
}

// Store receives reconciled records.
type Store interface {
	Upsert(rec work.Record) (storage.Action, error)
}

// Failure is a record whose lookup failed.
type Failure struct {
	ID        string `json:"id"`
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

// Report summarises an enrichment run.
type Report struct {
	Total          int       `json:"total"`
	Matched        int       `json:"matched"`
	Kept           int       `json:"kept"`
	NoMatch        int       `json:"no_match"`
	Failed         int       `json:"failed"`
	Updated        int       `json:"updated"`
	CitationErrors int       `json:"citation_errors"`
	Failures       []Failure `json:"failures,omitempty"`
}

// Retryable reports the number of failures worth retrying.
func (r Report) Retryable() int {
	n := 0
	for _, f := range r.Failures {
		if f.Retryable {
			n++
		}
	}
	return n
}

// Runner enriches records with bounded concurrency.
type Runner struct {
	Lookup  Lookup
	Matcher *match.Matcher
	Store   Store

	// Workers bounds concurrent lookups. Values below 1 mean 1.
	Workers int
	// Retryable classifies lookup errors. Nil treats every error as final.
	Retryable func(error) bool
	// Quiet suppresses the progress bar.
	Quiet bool
}

// Run looks up, reconciles and upserts every record. Lookup failures are
// recorded in the report and do not stop the run; store errors and context
// cancellation do. Records already processed stay in the store.
func (r *Runner) Run(ctx context.Context, recs []work.Record) (Report, error) {
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	report := Report{Total: len(recs)}
	bar := progress.New(len(recs), "enrich", r.Quiet)
	defer bar.Finish()

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, rec := range recs {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			defer bar.Increment()

			cands, err := r.Lookup.Candidates(gCtx, rec)
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				retry := r.Retryable != nil && r.Retryable(err)
				slog.Warn("lookup failed", "id", rec.ID, "retryable", retry, "error", err)

				mu.Lock()
				report.Failed++
				report.Failures = append(report.Failures, Failure{ID: rec.ID, Error: err.Error(), Retryable: retry})
				mu.Unlock()
				return nil
			}

			out, outcome := Reconcile(r.Matcher, rec, cands)
			action, err := r.Store.Upsert(out)
			if err != nil {
				return err
			}
			slog.Debug("reconciled", "id", rec.ID, "outcome", outcome, "action", action, "candidates", len(cands))

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case OutcomeMatched:
				report.Matched++
			case OutcomeKept:
				report.Kept++
			default:
				report.NoMatch++
			}
			if action != storage.ActionUnchanged {
				report.Updated++
			}
			if out.CitationError != "" {
				report.CitationErrors++
			}
			return nil
		})
	}

	err := g.Wait()
	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].ID < report.Failures[j].ID
	})

	slog.Info("enrichment finished",
		"total", humanize.Comma(int64(report.Total)),
		"matched", humanize.Comma(int64(report.Matched)),
		"no_match", humanize.Comma(int64(report.NoMatch)),
		"failed", humanize.Comma(int64(report.Failed)),
	)

	if err == nil {
		err = ctx.Err()
	}
	if errors.Is(err, context.Canceled) {
		slog.Warn("enrichment interrupted", "processed", report.Matched+report.Kept+report.NoMatch+report.Failed)
	}
	return report, err
}
