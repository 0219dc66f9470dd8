// Package netclient is the HTTP(S) fetcher each worker owns: one cookie
// jar per worker (a "cookie-preserving session" per spec.md §4.6), a
// rate-limited minimum interval between requests, and a classification
// of failures into skip vs. retry-after-reset.
package netclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/crawlserv/crawlservpp-sub000/internal/platform/metrics"
)

const maxRedirects = 10

// ErrTooManyRedirects classifies a fetch as skip, grounded on the
// teacher's CheckRedirect cap in internal/crawler/extractor.go.
var ErrTooManyRedirects = errors.New("netclient: too many redirects")

// Outcome classifies how a fetch failure should be handled by the
// caller (spec.md §4.6 Retry policy).
type Outcome int

const (
	// OutcomeOK is a normal response, 2xx or otherwise treated as
	// success (non-200 outside 400-599 is a warning, not a failure).
	OutcomeOK Outcome = iota
	// OutcomeSkip means the URL should be marked done without success
	// (too many redirects, or HTTP status 400-599).
	OutcomeSkip
	// OutcomeRetryAfterReset means the caller calls Reset, which tears
	// down and recreates the connection and then sleeps ErrorDelay, and
	// lets the supervisor decide whether to re-enter the same URL.
	OutcomeRetryAfterReset
)

func (o Outcome) label() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeSkip:
		return "skip"
	case OutcomeRetryAfterReset:
		return "retry_after_reset"
	default:
		return "unknown"
	}
}

// Response is the result of a successful (or warned) fetch.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Options configures a Client.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MinRPS     float64 // minimum interval between requests, as a rate
	ErrorDelay time.Duration
}

// Client is one worker's HTTP session: its own cookie jar, its own rate
// limiter, reusable and resettable.
type Client struct {
	opts    Options
	http    *http.Client
	limiter *rate.Limiter
}

// New builds a Client with a fresh cookie jar.
func New(opts Options) (*Client, error) {
	c := &Client{opts: opts}

	httpClient, err := newHTTPClient(opts)
	if err != nil {
		return nil, err
	}

	c.http = httpClient
	c.limiter = rate.NewLimiter(rate.Limit(opts.MinRPS), 1)

	return c, nil
}

func newHTTPClient(opts Options) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &http.Client{
		Timeout: opts.Timeout,
		Jar:     jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return ErrTooManyRedirects
			}

			return nil
		},
	}, nil
}

// Reset tears down and recreates the underlying *http.Client (and its
// cookie jar) and then sleeps ErrorDelay, used after a transport-level
// failure classified as retry-after-reset.
func (c *Client) Reset() error {
	httpClient, err := newHTTPClient(c.opts)
	if err != nil {
		return err
	}

	c.http = httpClient

	time.Sleep(c.opts.ErrorDelay)

	return nil
}

// WaitIdle blocks until the minimum interval since the previous request
// has elapsed. The caller is expected to account this as idle, not
// working, time (spec.md §4.6 Sleep discipline).
func (c *Client) WaitIdle(ctx context.Context) error {
	if c.opts.MinRPS <= 0 {
		return nil
	}

	return c.limiter.Wait(ctx)
}

// Get implements get(url, use_post) → body. It
// waits out the sleep discipline, performs the request, and classifies
// the result.
func (c *Client) Get(ctx context.Context, target string, usePost bool) (Response, Outcome, error) {
	return c.GetWithCookie(ctx, target, usePost, "")
}

// GetWithCookie behaves like Get but additionally sends cookie as a
// literal Cookie header, used by the Extractor to carry its configured,
// token-substituted cookie string (spec.md §4.8 step 5) independently
// of whatever the worker's cookie jar has already accumulated.
func (c *Client) GetWithCookie(ctx context.Context, target string, usePost bool, cookie string) (Response, Outcome, error) {
	resp, outcome, err := c.doGetWithCookie(ctx, target, usePost, cookie)
	metrics.HTTPFetchesTotal.WithLabelValues(outcome.label()).Inc()

	return resp, outcome, err
}

func (c *Client) doGetWithCookie(ctx context.Context, target string, usePost bool, cookie string) (Response, Outcome, error) {
	if err := c.WaitIdle(ctx); err != nil {
		return Response{}, OutcomeSkip, fmt.Errorf("wait for rate limiter: %w", err)
	}

	method := http.MethodGet
	if usePost {
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return Response{}, OutcomeSkip, fmt.Errorf("build request: %w", err)
	}

	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, ErrTooManyRedirects) {
			return Response{}, OutcomeSkip, err
		}

		return Response{}, OutcomeRetryAfterReset, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, OutcomeRetryAfterReset, fmt.Errorf("read body: %w", err)
	}

	out := Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}

	if resp.StatusCode >= 400 && resp.StatusCode <= 599 {
		return out, OutcomeSkip, nil
	}

	return out, OutcomeOK, nil
}

// ErrorDelay is the configured sleep duration after a
// retry-after-reset classification.
func (c *Client) ErrorDelay() time.Duration {
	return c.opts.ErrorDelay
}
