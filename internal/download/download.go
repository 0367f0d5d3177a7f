// Package download fetches the PDF files of catalogued works.
//
// Files are named by the filename package and written under a single
// directory. An existing file above the minimum size that verifies as a
// PDF is kept. Interrupted downloads leave a .part file that the next run
// resumes with an HTTP Range request.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/atjproject/lawcat/internal/filename"
	"github.com/atjproject/lawcat/internal/pdf"
	"github.com/atjproject/lawcat/internal/progress"
	"github.com/atjproject/lawcat/internal/work"
)

const (
	// MinSize is the size above which an existing file is trusted as complete.
	MinSize = 10000

	// DefaultInterval is the minimum spacing between download requests.
	DefaultInterval = 1500 * time.Millisecond

	// DefaultTimeout bounds a single download.
	DefaultTimeout = 2 * time.Minute

	// DefaultUserAgent identifies the harvester.
	DefaultUserAgent = "lawcat/1.0 (Access to Justice research project)"

	partSuffix = ".part"
)

// Errors.
var (
	ErrNoPDFURL = errors.New("record has no PDF URL")
	ErrHTTP     = errors.New("download failed")
)

// Status describes what happened to one record.
type Status string

// Download outcomes.
const (
	StatusDownloaded Status = "downloaded"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// Result is the outcome for one record.
type Result struct {
	ID     string
	Status Status
	PDF    *work.PDFInfo
	Err    error
}

// Downloader fetches PDFs into a directory.
type Downloader struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	dir        string
	userAgent  string
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(d *Downloader) {
		d.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(d *Downloader) {
		if ua != "" {
			d.userAgent = ua
		}
	}
}

// WithInterval sets the minimum spacing between requests. Zero disables throttling.
func WithInterval(iv time.Duration) Option {
	return func(d *Downloader) {
		if iv <= 0 {
			d.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		d.limiter = rate.NewLimiter(rate.Every(iv), 1)
	}
}

// New creates a Downloader writing into dir.
func New(dir string, opts ...Option) *Downloader {
	d := &Downloader{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(DefaultInterval), 1),
		dir:        dir,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dir returns the download directory.
func (d *Downloader) Dir() string {
	return d.dir
}

// Fetch downloads the PDF of rec unless a complete copy already exists.
// The returned info always describes the outcome, including failures.
func (d *Downloader) Fetch(ctx context.Context, rec work.Record) Result {
	res := Result{ID: rec.ID}
	if rec.PDFURL == "" {
		res.Status = StatusFailed
		res.Err = ErrNoPDFURL
		return res
	}

	name := filename.Render(rec)
	path := filepath.Join(d.dir, name)

	if info, ok := existing(path, name); ok {
		res.Status = StatusSkipped
		res.PDF = info
		return res
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return failed(res, name, fmt.Errorf("creating pdf directory: %w", err))
	}

	size, err := d.fetchTo(ctx, rec.PDFURL, path)
	if err != nil {
		return failed(res, name, err)
	}

	pages, err := pdf.Verify(path)
	if err != nil {
		os.Remove(path)
		return failed(res, name, err)
	}

	res.Status = StatusDownloaded
	res.PDF = &work.PDFInfo{Path: name, SizeBytes: size, Pages: pages, Downloaded: true}
	return res
}

// existing reports a usable, already downloaded file.
func existing(path, name string) (*work.PDFInfo, bool) {
	st, err := os.Stat(path)
	if err != nil || st.Size() <= MinSize {
		return nil, false
	}
	pages, err := pdf.Verify(path)
	if err != nil {
		slog.Warn("existing PDF failed verification, downloading again", "path", path, "error", err)
		return nil, false
	}
	return &work.PDFInfo{Path: name, SizeBytes: st.Size(), Pages: pages, Downloaded: true}, true
}

func failed(res Result, name string, err error) Result {
	res.Status = StatusFailed
	res.Err = err
	res.PDF = &work.PDFInfo{Path: name, Downloaded: false, Error: err.Error()}
	return res
}

// fetchTo downloads u into path via a .part file, resuming a previous
// partial download when the server honours the Range header.
func (d *Downloader) fetchTo(ctx context.Context, u, path string) (int64, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}

	part := path + partSuffix
	var offset int64
	if st, err := os.Stat(part); err == nil {
		offset = st.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	if offset > 0 {
		req.Header.Set("Range", "bytes="+strconv.FormatInt(offset, 10)+"-")
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrHTTP, err)
	}
	defer resp.Body.Close()

	flags := os.O_CREATE | os.O_WRONLY
	switch {
	case resp.StatusCode == http.StatusPartialContent && offset > 0:
		flags |= os.O_APPEND
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable && offset > 0:
		// The part file already holds the whole body.
		if err := os.Rename(part, path); err != nil {
			return 0, fmt.Errorf("finishing download: %w", err)
		}
		return offset, nil
	case resp.StatusCode == http.StatusOK:
		flags |= os.O_TRUNC
		offset = 0
	default:
		return 0, fmt.Errorf("%w: %s: status %d", ErrHTTP, u, resp.StatusCode)
	}

	f, err := os.OpenFile(part, flags, 0644)
	if err != nil {
		return 0, fmt.Errorf("opening part file: %w", err)
	}
	n, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if copyErr != nil {
		// Keep the part file for the next run.
		return 0, fmt.Errorf("%w: %v", ErrHTTP, copyErr)
	}
	if closeErr != nil {
		return 0, fmt.Errorf("closing part file: %w", closeErr)
	}

	if err := os.Rename(part, path); err != nil {
		return 0, fmt.Errorf("finishing download: %w", err)
	}
	return offset + n, nil
}

// Summary counts the outcomes of a batch.
type Summary struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// All fetches every record that has a PDF URL using up to workers
// concurrent downloads. fn is called once per record, never concurrently.
// Per-record failures are reported through fn and do not stop the batch;
// only context cancellation does.
func (d *Downloader) All(ctx context.Context, recs []work.Record, workers int, quiet bool, fn func(Result)) (Summary, error) {
	var todo []work.Record
	for _, rec := range recs {
		if rec.PDFURL != "" {
			todo = append(todo, rec)
		}
	}

	if workers <= 0 {
		workers = 1
	}
	bar := progress.New(len(todo), "download", quiet)
	defer bar.Finish()

	var (
		mu  sync.Mutex
		sum Summary
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, rec := range todo {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			res := d.Fetch(gCtx, rec)
			if gCtx.Err() != nil {
				return gCtx.Err()
			}

			mu.Lock()
			defer mu.Unlock()
			switch res.Status {
			case StatusDownloaded:
				sum.Downloaded++
			case StatusSkipped:
				sum.Skipped++
			default:
				sum.Failed++
			}
			fn(res)
			bar.Increment()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return sum, err
	}
	return sum, ctx.Err()
}
