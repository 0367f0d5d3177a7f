// Package crawl harvests book metadata from the juridikbok.se catalog.
package crawl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the juridikbok.se site root.
	BaseURL = "https://www.juridikbok.se"

	// DefaultInterval is the minimum spacing between requests.
	DefaultInterval = 1500 * time.Millisecond

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the harvester to the site.
	DefaultUserAgent = "lawcat/1.0 (Access to Justice research project)"

	// PageSize is the number of books requested per listing page.
	PageSize = 24

	listPath = "/Books/All"
)

// ErrFetch indicates a page could not be retrieved.
var ErrFetch = errors.New("fetching page failed")

// Client is a rate-limited client for the juridikbok.se catalog pages.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    *url.URL
	userAgent  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing). Invalid URLs are ignored.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if parsed, err := url.Parse(strings.TrimRight(u, "/")); err == nil {
			c.baseURL = parsed
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithInterval sets the minimum spacing between requests. Zero disables throttling.
func WithInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// NewClient creates a new catalog client.
func NewClient(opts ...ClientOption) *Client {
	base, _ := url.Parse(BaseURL)
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(DefaultInterval), 1),
		baseURL:    base,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetch, u, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, u, err)
	}
	return body, nil
}

// ListPage fetches one listing page. Pages are numbered from 0.
func (c *Client) ListPage(ctx context.Context, page int) (*ListPage, error) {
	params := url.Values{}
	params.Set("p", strconv.Itoa(page))
	params.Set("ps", strconv.Itoa(PageSize))
	params.Set("s", "0")
	u := c.baseURL.String() + listPath + "?" + params.Encode()

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	lp, err := ParseListPage(bytes.NewReader(body), c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing listing page %d: %w", page, err)
	}
	return lp, nil
}

// Detail fetches the detail page of e and fills in its fields.
func (c *Client) Detail(ctx context.Context, e *Entry) error {
	if e.DetailURL == "" {
		return nil
	}
	body, err := c.get(ctx, e.DetailURL)
	if err != nil {
		return err
	}
	if err := ParseDetailPage(bytes.NewReader(body), c.baseURL, e); err != nil {
		return fmt.Errorf("parsing detail page %s: %w", e.DetailURL, err)
	}
	e.Detailed = true
	return nil
}

// HarvestFunc receives each harvested entry. detailErr is set when the
// listing entry was found but its detail page could not be read; the entry
// then carries listing data only. Returning an error stops the harvest.
type HarvestFunc func(e Entry, detailErr error) error

// Harvest walks the listing pages in order, fetches every entry's detail
// page and passes the result to fn. It stops after max entries when max is
// positive. It returns the number of entries passed to fn.
func (c *Client) Harvest(ctx context.Context, max int, fn HarvestFunc) (int, error) {
	n := 0
	for page := 0; ; page++ {
		lp, err := c.ListPage(ctx, page)
		if err != nil {
			return n, err
		}
		if len(lp.Entries) == 0 {
			return n, nil
		}

		for i := range lp.Entries {
			if max > 0 && n >= max {
				return n, nil
			}
			e := lp.Entries[i]
			detailErr := c.Detail(ctx, &e)
			if ctx.Err() != nil {
				return n, ctx.Err()
			}
			if err := fn(e, detailErr); err != nil {
				return n, err
			}
			n++
		}

		if page+1 >= lp.LastPage {
			return n, nil
		}
	}
}
