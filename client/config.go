package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/famomatic/ytresolve/internal/playerjs"
)

// Config holds configuration for the resolver client.
type Config struct {
	// HTTPClient is the client used for making requests.
	// If nil, a client over a clone of http.DefaultTransport is used.
	HTTPClient *http.Client

	// ProxyURL is the optional proxy URL to use for requests. New fails with
	// ErrInvalidProxy when it has no scheme or host.
	// If HTTPClient is provided, this field is ignored.
	ProxyURL string

	// RequestTimeout bounds every upstream request. Zero means no bound
	// beyond the caller's context.
	RequestTimeout time.Duration

	// UserAgent overrides the desktop user agent used for watch pages and
	// player scripts.
	UserAgent string

	// Engine selects the script engine running player transforms:
	// "goja" (default) or "otto".
	Engine string

	// ScriptTimeout bounds a single transform evaluation.
	// Default is playerjs.DefaultScriptTimeout.
	ScriptTimeout time.Duration

	// RateLimit paces upstream requests per second. Zero disables pacing.
	RateLimit float64
	Burst     int

	// SlogLogger receives all pipeline logs. If nil, Logger is used when set,
	// else slog.Default().
	SlogLogger *slog.Logger

	// Logger is a narrow warning sink for library users without slog.
	Logger Logger
}

func (c Config) engineName() string {
	if c.Engine == "" {
		return playerjs.EngineGoja
	}
	return c.Engine
}

func (c Config) scriptTimeout() time.Duration {
	if c.ScriptTimeout <= 0 {
		return playerjs.DefaultScriptTimeout
	}
	return c.ScriptTimeout
}

func (c Config) slogLogger() *slog.Logger {
	if c.SlogLogger != nil {
		return c.SlogLogger
	}
	if c.Logger != nil {
		return slog.New(newWarnfHandler(c.Logger))
	}
	return slog.Default()
}
