package client

import "errors"

var (
	// ErrInvalidInput indicates malformed input (not a video ID/url).
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCookies indicates a cookies file that could not be read.
	ErrInvalidCookies = errors.New("invalid cookies")
	// ErrInvalidProxy indicates a proxy URL without scheme or host.
	ErrInvalidProxy = errors.New("invalid proxy url")
)
