package innertube

import (
	"errors"
	"strings"
)

// AutoProfileID requests automatic persona selection.
const AutoProfileID = "auto"

// ErrProfileNotFound is returned when an explicit profile id is not registered.
var ErrProfileNotFound = errors.New("client profile not found")

// ClientProfile describes one emulated API client persona.
//
// Personas differ only in data, so every persona uses this record and leaves
// the fields it does not need empty.
type ClientProfile struct {
	// ID is the registry alias (e.g. "tv_html5"), distinct from the
	// innertube clientName ("TVHTML5").
	ID          string
	DisplayName string

	SupportsCookies bool
	// Default marks the profile used by automatic selection without cookies.
	Default bool

	// Context is the fixed innertube context. Nil means the context is read
	// from the persona configuration page at ConfigURL.
	Context *Context

	// NameInHeaders is sent as X-YouTube-Client-Name.
	NameInHeaders string
	// UserAgent is the fixed API user agent; empty uses the context one.
	UserAgent string
	// ConfigUserAgent is used when downloading the configuration page.
	ConfigUserAgent string
	// ConfigURL may contain a {video_id} placeholder.
	ConfigURL string
	Params    string
}

// NeedsConfigPage reports whether the context must be fetched before an API call.
func (p ClientProfile) NeedsConfigPage() bool {
	return p.Context == nil
}

// ConfigPageURL returns the configuration page URL for videoID.
func (p ClientProfile) ConfigPageURL(videoID string) string {
	return strings.ReplaceAll(p.ConfigURL, "{video_id}", videoID)
}

// ProfileListing is the public description of a selectable persona.
type ProfileListing struct {
	DisplayName     string `json:"display_name"`
	ID              string `json:"id"`
	SupportsCookies bool   `json:"supports_cookies"`
}

// Registry looks up client personas.
type Registry interface {
	Get(id string) (ClientProfile, bool)
	All() []ClientProfile
	Resolve(requestedID string, hasCookies bool) (ClientProfile, error)
	List() []ProfileListing
}
