// Package fetch retrieves source documents over HTTP with a fixed header set,
// a bounded wait and a capped redirect policy.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/net/http2"

	"github.com/phrazzld/baike-api/internal/domain"
)

// MaxBodyBytes bounds how much of a response body is read.
const MaxBodyBytes = 10 << 20

// Config holds the request policy of a Client.
type Config struct {
	// Timeout bounds each request including redirects and body read.
	Timeout time.Duration

	UserAgent string
	Accept    string

	// MaxRedirects caps redirect following. Zero means redirects are refused.
	MaxRedirects int
}

// DefaultConfig returns the header set and limits the source site accepts.
func DefaultConfig() Config {
	return Config{
		Timeout:      10 * time.Second,
		UserAgent:    "curl/7.79.1",
		Accept:       "*/*",
		MaxRedirects: 10,
	}
}

// Response is a successfully fetched document. Body is UTF-8.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        string
	Cached      bool
}

// PageCache stores fetched markup between requests.
type PageCache interface {
	// Get returns the cached body when it is younger than maxAge.
	Get(ctx context.Context, url string, maxAge time.Duration) (string, bool, error)
	Put(ctx context.Context, url, body string) error
}

// Client fetches documents. It is safe for concurrent use.
type Client struct {
	cfg         Config
	httpClient  *http.Client
	cache       PageCache
	cacheMaxAge time.Duration
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCache serves bodies younger than maxAge from cache and saves every
// successful fetch to it.
func WithCache(cache PageCache, maxAge time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheMaxAge = maxAge
	}
}

// WithHTTPClient replaces the underlying HTTP client. Its redirect policy is
// overridden by the Client's.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		clone := *hc
		c.httpClient = &clone
	}
}

// New creates a Client with an HTTP/2-capable transport.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		cfg:    cfg,
		logger: logger.With("component", "fetcher"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Transport: c.newTransport()}
	}
	c.httpClient.CheckRedirect = c.checkRedirect
	return c
}

func (c *Client) newTransport() *http.Transport {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   c.cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   c.cfg.Timeout,
		ExpectContinueTimeout: time.Second,
	}
	if err := http2.ConfigureTransport(t); err != nil {
		c.logger.Warn("http2 unavailable, using http/1.1", "error", err)
	}
	return t
}

func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) > c.cfg.MaxRedirects {
		return fmt.Errorf("stopped after %d redirects", c.cfg.MaxRedirects)
	}
	if !isHTTPScheme(req.URL) {
		return fmt.Errorf("redirect to unsupported scheme %q", req.URL.Scheme)
	}
	return nil
}

// Get fetches rawURL. Transport failures and non-2xx statuses are returned
// as *domain.NetworkError. No retries are attempted.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	logger := c.logger.With("url", rawURL)

	if body, ok := c.cached(ctx, rawURL); ok {
		logger.Debug("serving document from cache")
		return &Response{
			URL:         rawURL,
			StatusCode:  http.StatusOK,
			ContentType: "text/html; charset=utf-8",
			Body:        body,
			Cached:      true,
		}, nil
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &domain.NetworkError{URL: rawURL, Err: fmt.Errorf("new request: %w", err)}
	}
	if !isHTTPScheme(req.URL) {
		return nil, &domain.NetworkError{URL: rawURL, Err: fmt.Errorf("unsupported URL scheme %q", req.URL.Scheme)}
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.Accept != "" {
		req.Header.Set("Accept", c.cfg.Accept)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("fetch failed", "error", err)
		return nil, &domain.NetworkError{URL: rawURL, Err: c.describe(err)}
	}
	defer resp.Body.Close()

	logger.Debug("fetch finished",
		"status", resp.StatusCode,
		"proto", resp.Proto,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxBodyBytes))
		return nil, &domain.NetworkError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	reader, err := charset.NewReader(io.LimitReader(resp.Body, MaxBodyBytes), contentType)
	if err != nil {
		return nil, &domain.NetworkError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode body: %w", err)}
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, &domain.NetworkError{URL: rawURL, Err: fmt.Errorf("read body: %w", c.describe(err))}
	}

	body := string(raw)
	if c.cache != nil {
		if err := c.cache.Put(ctx, rawURL, body); err != nil {
			logger.Warn("failed to cache document", "error", err)
		}
	}

	return &Response{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}, nil
}

func (c *Client) cached(ctx context.Context, rawURL string) (string, bool) {
	if c.cache == nil {
		return "", false
	}
	body, ok, err := c.cache.Get(ctx, rawURL, c.cacheMaxAge)
	if err != nil {
		c.logger.Warn("page cache lookup failed", "url", rawURL, "error", err)
		return "", false
	}
	return body, ok
}

// describe turns deadline expiry into a message naming the configured bound.
func (c *Client) describe(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return fmt.Errorf("request timed out after %s: %w", c.cfg.Timeout, err)
	}
	return err
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
