package webpage

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// YTConfig is the ytcfg.set payload of a page.
type YTConfig struct {
	raw  []byte
	root gjson.Result
}

func NewYTConfig(raw []byte) *YTConfig {
	return &YTConfig{raw: raw, root: gjson.ParseBytes(raw)}
}

func (c *YTConfig) Raw() []byte {
	return c.raw
}

// VisitorData prefers VISITOR_DATA and falls back to the context copy.
func (c *YTConfig) VisitorData() string {
	if v := c.root.Get("VISITOR_DATA").String(); v != "" {
		return v
	}
	return c.root.Get("INNERTUBE_CONTEXT.client.visitorData").String()
}

func (c *YTConfig) UserSessionID() string {
	return c.root.Get("USER_SESSION_ID").String()
}

func (c *YTConfig) LoggedIn() bool {
	return c.root.Get("LOGGED_IN").Bool()
}

// InnertubeContext returns the raw INNERTUBE_CONTEXT object, or nil.
func (c *YTConfig) InnertubeContext() json.RawMessage {
	v := c.root.Get("INNERTUBE_CONTEXT")
	if !v.IsObject() {
		return nil
	}
	return json.RawMessage(v.Raw)
}

func (c *YTConfig) ClientVersion() string {
	return c.root.Get("INNERTUBE_CONTEXT.client.clientVersion").String()
}

func (c *YTConfig) ContextUserAgent() string {
	return c.root.Get("INNERTUBE_CONTEXT.client.userAgent").String()
}

func (c *YTConfig) MarshalJSON() ([]byte, error) {
	if len(c.raw) == 0 {
		return []byte("null"), nil
	}
	return c.raw, nil
}

// JSURL returns the player script path named by the watch player context
// configs or PLAYER_JS_URL, or "".
func (c *YTConfig) JSURL() string {
	var out string
	c.root.Get("WEB_PLAYER_CONTEXT_CONFIGS").ForEach(func(_, value gjson.Result) bool {
		out = value.Get("jsUrl").String()
		return out == ""
	})
	if out != "" {
		return out
	}
	return c.root.Get("PLAYER_JS_URL").String()
}
