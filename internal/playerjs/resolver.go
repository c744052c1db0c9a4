package playerjs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/famomatic/ytresolve/internal/cookies"
	"github.com/famomatic/ytresolve/internal/fetch"
)

// Resolver downloads player scripts and hands out analyzed bundles.
type Resolver interface {
	GetBundle(ctx context.Context, playerURL string, headers http.Header, jar []cookies.Cookie) (*Bundle, error)
}

type defaultResolver struct {
	fetcher fetch.Fetcher
	cache   Cache
	group   singleflight.Group
	config  ResolverConfig
	logger  *slog.Logger
}

// ResolverConfig contains externally tunable settings for player script fetches.
type ResolverConfig struct {
	BaseURL string
	Logger  *slog.Logger
}

const defaultPlayerBaseURL = "https://www.youtube.com"

var playerPathPattern = regexp.MustCompile(`^/s/player/([A-Za-z0-9_-]+)/(.+)$`)
var nonAlnumPattern = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func NewResolver(fetcher fetch.Fetcher, cache Cache, cfg ...ResolverConfig) Resolver {
	resolverConfig := ResolverConfig{}
	if len(cfg) > 0 {
		resolverConfig = cfg[0]
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	logger := resolverConfig.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &defaultResolver{
		fetcher: fetcher,
		cache:   cache,
		config:  resolverConfig,
		logger:  logger,
	}
}

// GetBundle returns the bundle for playerURL, downloading it once per process.
// Concurrent callers asking for the same script share one download.
func (r *defaultResolver) GetBundle(ctx context.Context, playerURL string, headers http.Header, jar []cookies.Cookie) (*Bundle, error) {
	if playerURL == "" {
		return nil, fmt.Errorf("empty player url")
	}
	fullURL := r.absoluteURL(playerURL)
	cacheKey := playerCacheKey(fullURL)
	if b, ok := r.cache.Get(cacheKey); ok {
		return b, nil
	}

	v, err, shared := r.group.Do(cacheKey, func() (any, error) {
		if b, ok := r.cache.Get(cacheKey); ok {
			return b, nil
		}
		resp, err := r.fetcher.FetchText(ctx, fullURL, headers, jar)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch player script: %w", err)
		}
		if !resp.OK() {
			return nil, fmt.Errorf("bad status code: %d", resp.Status)
		}
		b := NewBundle(fullURL, resp.Body)
		r.cache.Set(cacheKey, b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.logger.Debug("shared player script download", "player_url", fullURL)
	}
	return v.(*Bundle), nil
}

func (r *defaultResolver) absoluteURL(playerURL string) string {
	if strings.HasPrefix(playerURL, "http://") || strings.HasPrefix(playerURL, "https://") {
		return playerURL
	}
	baseURL := r.config.BaseURL
	if baseURL == "" {
		baseURL = defaultPlayerBaseURL
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(playerURL, "/")
}

// playerCacheKey reduces a player URL to "<player id>:<variant>" so the same
// script reached through different hosts shares one entry.
func playerCacheKey(playerURL string) string {
	path := playerURL
	if u, err := url.Parse(playerURL); err == nil && u.Path != "" {
		path = u.Path
	}
	m := playerPathPattern.FindStringSubmatch(path)
	if len(m) < 3 {
		return playerURL
	}
	return m[1] + ":" + nonAlnumPattern.ReplaceAllString(m[2], "_")
}
