// Package libris looks up works in LIBRIS, the Swedish union library catalog,
// and turns the results into match candidates.
package libris

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/time/rate"

	"github.com/atjproject/lawcat/internal/work"
)

const (
	// BaseURL is the LIBRIS web service root.
	BaseURL = "https://libris.kb.se"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultInterval is the minimum spacing between requests.
	DefaultInterval = 750 * time.Millisecond

	// DefaultUserAgent identifies the harvester to LIBRIS.
	DefaultUserAgent = "lawcat/1.0 (Access to Justice research project)"

	// DefaultSearchLimit caps title/author query results.
	DefaultSearchLimit = 5

	// DefaultMaxDetailLookups caps how many candidates per work get their
	// full record fetched for classification.
	DefaultMaxDetailLookups = 3

	maxQueryTitleRunes = 50
)

// Client is a rate-limited HTTP client for LIBRIS xsearch and bib pages.
type Client struct {
	httpClient       *http.Client
	limiter          *rate.Limiter
	baseURL          string
	userAgent        string
	maxDetailLookups int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
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

// WithMaxDetailLookups sets how many candidates get their full record fetched.
func WithMaxDetailLookups(n int) ClientOption {
	return func(c *Client) {
		if n >= 0 {
			c.maxDetailLookups = n
		}
	}
}

// NewClient creates a new LIBRIS client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:       &http.Client{Timeout: DefaultTimeout},
		limiter:          rate.NewLimiter(rate.Every(DefaultInterval), 1),
		baseURL:          BaseURL,
		userAgent:        DefaultUserAgent,
		maxDetailLookups: DefaultMaxDetailLookups,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a throttled GET and returns the response body.
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
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			URL:        u,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrUnavailable, err)
	}
	return body, nil
}

func (c *Client) search(ctx context.Context, query string, limit int) ([]Hit, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")
	if limit > 0 {
		params.Set("n", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, c.baseURL+"/xsearch?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parsing xsearch results: %v", ErrInvalidResponse, err)
	}
	return resp.XSearch.List, nil
}

// SearchISBN searches by ISBN.
func (c *Client) SearchISBN(ctx context.Context, isbn string) ([]Hit, error) {
	isbn = NormalizeISBN(isbn)
	if isbn == "" {
		return nil, nil
	}
	return c.search(ctx, "isbn:"+isbn, 0)
}

// SearchTitleAuthor searches by title words and, when given, the author's
// family name.
func (c *Client) SearchTitleAuthor(ctx context.Context, title, family string) ([]Hit, error) {
	clean := queryTitle(title)
	if clean == "" {
		return nil, nil
	}
	query := "title:(" + clean + ")"
	if family = strings.TrimSpace(family); family != "" {
		query += " author:(" + family + ")"
	}
	return c.search(ctx, query, DefaultSearchLimit)
}

// FetchDetail fetches the full record page of a bib id and extracts its
// classification and subject terms.
func (c *Client) FetchDetail(ctx context.Context, bibID string) (*Detail, error) {
	u := c.baseURL + "/bib/" + url.PathEscape(bibID) + "?vw=full"
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	d, err := ParseDetail(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing bib %s: %v", ErrInvalidResponse, bibID, err)
	}
	return d, nil
}

// Candidates returns the LIBRIS candidates for rec. The ISBN is tried first;
// the title and primary author family are used when it yields nothing.
// The first few candidates carry classification and subjects from their
// full record.
func (c *Client) Candidates(ctx context.Context, rec work.Record) ([]work.Candidate, error) {
	var hits []Hit
	var err error

	if rec.ISBN != "" {
		hits, err = c.SearchISBN(ctx, rec.ISBN)
		if err != nil {
			return nil, fmt.Errorf("isbn search for %s: %w", rec.ID, err)
		}
	}
	if len(hits) == 0 {
		var family string
		if a, ok := rec.PrimaryAuthor(); ok {
			family = a.Family
		}
		hits, err = c.SearchTitleAuthor(ctx, rec.Title, family)
		if err != nil {
			return nil, fmt.Errorf("title search for %s: %w", rec.ID, err)
		}
	}

	hits = booksFirst(hits)
	cands := make([]work.Candidate, 0, len(hits))
	fetched := 0
	for _, h := range hits {
		cand := h.Candidate()
		if cand.BibID == "" {
			continue
		}
		if fetched < c.maxDetailLookups {
			fetched++
			d, err := c.FetchDetail(ctx, cand.BibID)
			switch {
			case err == nil:
				d.Apply(&cand)
			case IsNotFound(err):
			default:
				return nil, fmt.Errorf("detail for %s: %w", cand.BibID, err)
			}
		}
		cands = append(cands, cand)
	}
	return cands, nil
}

// Candidate converts the hit into a match candidate without classification.
func (h Hit) Candidate() work.Candidate {
	return work.Candidate{
		BibID:   h.BibID(),
		URL:     h.Identifier,
		Title:   h.Title,
		Authors: append([]string(nil), h.Creator...),
		Year:    h.Year(),
		ISBN:    NormalizeISBN(h.ISBN.First()),
	}
}

// booksFirst stably moves book hits ahead of other material types.
func booksFirst(hits []Hit) []Hit {
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		if h.IsBook() {
			out = append(out, h)
		}
	}
	for _, h := range hits {
		if !h.IsBook() {
			out = append(out, h)
		}
	}
	return out
}

// NormalizeISBN strips separators, keeping digits and a trailing X.
func NormalizeISBN(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteByte('X')
		}
	}
	return b.String()
}

// queryTitle removes query syntax characters and caps the length.
func queryTitle(title string) string {
	var b strings.Builder
	n := 0
	for _, r := range title {
		if n >= maxQueryTitleRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
			b.WriteRune(r)
			n++
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
