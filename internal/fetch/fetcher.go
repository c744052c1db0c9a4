// Package fetch performs the single GET and POST calls the resolver makes to
// the platform. It never retries and never follows anything beyond the
// transport's own redirect handling.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/famomatic/ytresolve/internal/cookies"
)

// Response is the outcome of one request.
type Response struct {
	Status     int
	StatusText string
	Body       string
	Header     http.Header
}

// OK reports a 200 response.
func (r *Response) OK() bool {
	return r != nil && r.Status == http.StatusOK
}

// Fetcher is the narrow transport contract used by the resolution pipeline.
type Fetcher interface {
	FetchText(ctx context.Context, url string, headers http.Header, jar []cookies.Cookie) (*Response, error)
	PostJSON(ctx context.Context, url string, headers http.Header, body any) (*Response, error)
}

// Config holds transport settings.
type Config struct {
	HTTPClient *http.Client
	// Timeout bounds each request when the context carries no deadline.
	Timeout time.Duration
	// RateLimit is the sustained request rate per second; zero disables pacing.
	RateLimit float64
	Burst     int
	Logger    *slog.Logger
}

type HTTPFetcher struct {
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	logger  *slog.Logger
}

func New(cfg Config) *HTTPFetcher {
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	f := &HTTPFetcher{
		client:  client,
		timeout: cfg.Timeout,
		logger:  logger,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return f
}

// FetchText performs a GET. Cookies matching the URL host are sent unless the
// caller already set a Cookie header.
func (f *HTTPFetcher) FetchText(ctx context.Context, url string, headers http.Header, jar []cookies.Cookie) (*Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	applyHeaders(req, headers)
	if req.Header.Get("Cookie") == "" {
		if v := cookies.HeaderValue(cookies.FilterForURL(jar, url)); v != "" {
			req.Header.Set("Cookie", v)
		}
	}
	return f.do(ctx, req)
}

// PostJSON marshals body and POSTs it.
func (f *HTTPFetcher) PostJSON(ctx context.Context, url string, headers http.Header, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	applyHeaders(req, headers)
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return f.do(ctx, req)
}

func (f *HTTPFetcher) do(ctx context.Context, req *http.Request) (*Response, error) {
	ctx, cancel := withDefaultTimeout(ctx, f.timeout)
	defer cancel()

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req = req.WithContext(ctx)
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	reader, err := decodeBody(resp)
	if err != nil {
		_ = resp.Body.Close()
		return nil, err
	}
	defer reader.Close()

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	f.logger.Debug("fetched",
		"method", req.Method,
		"url", req.URL.Redacted(),
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return &Response{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Body:       string(body),
		Header:     resp.Header,
	}, nil
}

func applyHeaders(req *http.Request, headers http.Header) {
	for k, vals := range headers {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
}

func withDefaultTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
