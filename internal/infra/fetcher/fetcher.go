package infra_fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
)

type Status int

const (
	StatusOK Status = iota
	StatusRateLimited
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRateLimited:
		return "rate-limited"
	default:
		return "failed"
	}
}

// Page is the outcome of one GET. Body is set for StatusOK, RetryAfter for
// StatusRateLimited and Err (a *model.FetchError) for StatusFailed.
type Page struct {
	URL        string
	Status     Status
	Body       []byte
	RetryAfter time.Duration
	Err        error
}

type Fetcher struct {
	client            *http.Client
	userAgent         string
	defaultRetryAfter time.Duration
	logger            *slog.Logger
}

type Option func(*Fetcher)

func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

func New(userAgent string, timeout, defaultRetryAfter time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:            &http.Client{Timeout: timeout},
		userAgent:         userAgent,
		defaultRetryAfter: defaultRetryAfter,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) Fetch(ctx context.Context, url string) Page {
	failed := func(status int, err error) Page {
		return Page{URL: url, Status: StatusFailed, Err: &model.FetchError{URL: url, StatusCode: status, Err: err}}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return failed(0, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	f.logger.Debug("fetching page", slog.String("url", url))

	resp, err := f.client.Do(req)
	if err != nil {
		return failed(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, resp.Body)
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now(), f.defaultRetryAfter)
		f.logger.Info("rate limited", slog.String("url", url), slog.Duration("retry_after", retryAfter))
		return Page{URL: url, Status: StatusRateLimited, RetryAfter: retryAfter}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return failed(resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed(resp.StatusCode, fmt.Errorf("read body: %w", err))
	}

	return Page{URL: url, Status: StatusOK, Body: body}
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time, def time.Duration) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return def
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return def
}

// IsNotFound reports whether err is a fetch failure with status 404.
func IsNotFound(err error) bool {
	var fe *model.FetchError
	return errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound
}
