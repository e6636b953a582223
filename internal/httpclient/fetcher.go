// Package httpclient retrieves documentation pages over HTTP.
package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/fbstubs/errors"
	"github.com/teranos/fbstubs/logger"
	"github.com/teranos/fbstubs/version"
)

// Fetcher retrieves the body of a document by URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Options configures an HTTPFetcher.
type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables rate limiting
	MaxRedirects      int
	RetryDelay        time.Duration
	MaxBodyBytes      int64
	UserAgent         string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Timeout:           30 * time.Second,
		RequestsPerSecond: 8,
		MaxRedirects:      10,
		RetryDelay:        500 * time.Millisecond,
		MaxBodyBytes:      16 << 20,
		UserAgent:         version.Get().UserAgent(),
	}
}

// HTTPFetcher fetches documents with one retry, a redirect cap and a shared
// rate limit.
type HTTPFetcher struct {
	client         *http.Client
	limiter        *rate.Limiter
	allowedSchemes []string
	opts           Options
	logger         *zap.SugaredLogger
}

// NewHTTPFetcher creates a fetcher with its own http.Client.
func NewHTTPFetcher(opts Options, log *zap.SugaredLogger) *HTTPFetcher {
	return WrapClient(&http.Client{Timeout: opts.Timeout}, opts, log)
}

// WrapClient creates a fetcher around an existing client, e.g. one returned by
// httptest.Server.Client().
func WrapClient(client *http.Client, opts Options, log *zap.SugaredLogger) *HTTPFetcher {
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultOptions().MaxRedirects
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultOptions().MaxBodyBytes
	}

	f := &HTTPFetcher{
		client:         client,
		allowedSchemes: []string{"http", "https"},
		opts:           opts,
		logger:         logger.OrNop(log),
	}
	if opts.RequestsPerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= f.opts.MaxRedirects {
			return errors.Newf("stopped after %d redirects", f.opts.MaxRedirects)
		}
		if err := f.validateURL(req.URL); err != nil {
			return errors.Wrap(err, "redirect blocked")
		}
		return nil
	}

	return f
}

// ValidateURL parses rawURL and checks that it can be fetched.
func (f *HTTPFetcher) ValidateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid URL %q", rawURL)
	}
	if err := f.validateURL(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (f *HTTPFetcher) validateURL(u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)
	allowed := false
	for _, s := range f.allowedSchemes {
		if scheme == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.Newf("scheme %q not allowed (only %v)", u.Scheme, f.allowedSchemes)
	}
	if u.Hostname() == "" {
		return errors.New("URL must have a hostname")
	}
	return nil
}

// StripFragment removes the "#..." suffix of a URL.
func StripFragment(rawURL string) string {
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// Fetch retrieves rawURL, retrying once on a transport error or a non-200
// status. The final failure wraps errors.ErrFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := f.ValidateURL(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.WithMessage(errors.ErrFetch, err.Error()), "validate")
	}
	u.Fragment = ""

	const attempts = 2
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.opts.RetryDelay):
			}
		}

		body, err := f.get(ctx, u.String())
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		f.logger.Debugw("Fetch attempt failed",
			logger.FieldURL, u.String(),
			logger.FieldAttempt, attempt,
			logger.FieldError, err.Error(),
		)
	}

	return nil, errors.Wrapf(errors.WithMessage(errors.ErrFetch, lastErr.Error()), "GET %s", u.String())
}

func (f *HTTPFetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "rate limit")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, errors.Newf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	if int64(len(body)) > f.opts.MaxBodyBytes {
		return nil, errors.Newf("body exceeds %d bytes", f.opts.MaxBodyBytes)
	}

	f.logger.Debugw("Fetched",
		logger.FieldURL, rawURL,
		logger.FieldSize, len(body),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return body, nil
}
