package client

import (
	"github.com/famomatic/ytresolve/internal/cookies"
	"github.com/famomatic/ytresolve/internal/innertube"
	"github.com/famomatic/ytresolve/internal/orchestrator"
)

type (
	// Cookie is one browser cookie sent along with platform requests.
	Cookie = cookies.Cookie
	// Answer is the resolution document.
	Answer = orchestrator.Answer
	// Result wraps an Answer with its pipeline trace.
	Result = orchestrator.Result
	// ClientListing describes one selectable client persona.
	ClientListing = innertube.ProfileListing
)

// ResolveOptions tunes one resolution.
type ResolveOptions struct {
	// ClientID picks the persona; blank or "auto" selects automatically.
	ClientID string
	// RequestedData is a comma separated list of web_page, raw_video_info,
	// parsed_video_info, urls or all. Blank means all.
	RequestedData string
	// Cookies replace the default cookies for this call.
	Cookies []Cookie
}
