package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// newHTTPClient builds the client for all upstream requests. The default
// transport is cloned so proxy and timeout settings stay local to the client.
// A timeout also bounds the wait for response headers.
func newHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return http.DefaultClient, nil
	}
	transport := base.Clone()
	if timeout > 0 {
		transport.ResponseHeaderTimeout = timeout
	}
	if proxy := strings.TrimSpace(proxyURL); proxy != "" {
		parsed, err := url.Parse(proxy)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, proxyURL)
		}
		transport.Proxy = http.ProxyURL(parsed)
	}
	return &http.Client{Transport: transport}, nil
}
