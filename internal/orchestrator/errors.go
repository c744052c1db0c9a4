package orchestrator

import (
	"fmt"
	"net/http"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// KindClient covers bad requests: unknown tokens, profiles or cookie misuse.
	KindClient Kind = iota + 1
	// KindNotFound covers data missing from the page, config or player script.
	KindNotFound
	// KindUpstream carries a non-200 status from the platform.
	KindUpstream
	// KindInternal covers everything the caller cannot fix.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a failure reported to the caller as an answer, never as a Go error.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Kind, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func clientError(message string, err error) *Error {
	return &Error{Kind: KindClient, Status: http.StatusBadRequest, Message: message, Err: err}
}

func notFoundError(message string, err error) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: message, Err: err}
}

func upstreamError(status int, message string, err error) *Error {
	return &Error{Kind: KindUpstream, Status: status, Message: message, Err: err}
}

func internalError(message string, err error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: message, Err: err}
}
