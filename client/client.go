// Package client is the public entry point: it wires the fetcher, the player
// script cache, the transform engine and the resolution pipeline together.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/famomatic/ytresolve/internal/cookies"
	"github.com/famomatic/ytresolve/internal/fetch"
	"github.com/famomatic/ytresolve/internal/formats"
	"github.com/famomatic/ytresolve/internal/innertube"
	"github.com/famomatic/ytresolve/internal/orchestrator"
	"github.com/famomatic/ytresolve/internal/playerjs"
)

// Client resolves videos. It is safe for concurrent use; player scripts,
// transform results and default cookies are shared by all calls.
type Client struct {
	config   Config
	engine   *orchestrator.Engine
	executor *playerjs.Executor
	logger   *slog.Logger
}

// New creates a new client.
func New(config Config) (*Client, error) {
	if config.HTTPClient == nil {
		httpClient, err := newHTTPClient(config.ProxyURL, config.RequestTimeout)
		if err != nil {
			return nil, err
		}
		config.HTTPClient = httpClient
	}
	logger := config.slogLogger()

	scriptEngine, err := playerjs.NewEngine(config.engineName(), config.scriptTimeout())
	if err != nil {
		return nil, err
	}

	fetcher := fetch.New(fetch.Config{
		HTTPClient: config.HTTPClient,
		Timeout:    config.RequestTimeout,
		RateLimit:  config.RateLimit,
		Burst:      config.Burst,
		Logger:     logger,
	})
	executor := playerjs.NewExecutor(scriptEngine, logger)
	engine, err := orchestrator.NewEngine(orchestrator.Config{
		Fetcher:        fetcher,
		Registry:       innertube.NewRegistry(),
		Players:        playerjs.NewResolver(fetcher, playerjs.NewMemoryCache(), playerjs.ResolverConfig{Logger: logger}),
		Decrypter:      executor,
		Repairer:       formats.NewRepairer(logger),
		DefaultCookies: cookies.NewStore(),
		UserAgent:      config.UserAgent,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		config:   config,
		engine:   engine,
		executor: executor,
		logger:   logger,
	}, nil
}

// Resolve runs one resolution for input, a video id or URL. The error is
// non-nil only for unusable input or a cancelled context; everything else is
// described by the answer.
func (c *Client) Resolve(ctx context.Context, input string, opts ResolveOptions) (*Result, error) {
	videoID, err := ExtractVideoID(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, input)
	}
	return c.engine.Resolve(ctx, orchestrator.Request{
		VideoID:       videoID,
		ClientID:      opts.ClientID,
		RequestedData: opts.RequestedData,
		Cookies:       opts.Cookies,
	})
}

// Clients lists the selectable personas, automatic selection first.
func (c *Client) Clients() []ClientListing {
	return c.engine.Registry().List()
}

// SetDefaultCookies replaces the cookies used when a call brings none.
func (c *Client) SetDefaultCookies(list []Cookie) {
	c.engine.DefaultCookies().Set(list)
	c.logger.Info("default cookies set", "count", len(list))
}

// ClearDefaultCookies removes the default cookies.
func (c *Client) ClearDefaultCookies() {
	c.engine.DefaultCookies().Clear()
	c.logger.Info("default cookies cleared")
}

// DefaultCookieCount reports how many default cookies are installed.
func (c *Client) DefaultCookieCount() int {
	return c.engine.DefaultCookies().Len()
}

// TransformCacheSize reports the number of memoized n and signature results.
func (c *Client) TransformCacheSize() int {
	return c.executor.Memo(playerjs.KindN).Len() + c.executor.Memo(playerjs.KindSignature).Len()
}

// ReadCookies parses a Netscape cookies.txt stream.
func ReadCookies(r io.Reader) ([]Cookie, error) {
	list, err := cookies.ParseNetscape(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCookies, err)
	}
	return list, nil
}

// LoadCookiesFile parses a Netscape cookies.txt file.
func LoadCookiesFile(path string) ([]Cookie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCookies, err)
	}
	defer f.Close()
	return ReadCookies(f)
}
