package innertube

import (
	"encoding/json"
	"fmt"
)

// PlayerEndpoint is the internal playback API.
const PlayerEndpoint = Origin + "/youtubei/v1/player"

type PlayerRequest struct {
	Context         json.RawMessage `json:"context"`
	PlaybackContext PlaybackContext `json:"playbackContext"`
	VideoID         string          `json:"videoId"`
	ContentCheckOk  bool            `json:"contentCheckOk"`
	RacyCheckOk     bool            `json:"racyCheckOk"`
	Params          string          `json:"params,omitempty"`
}

type Context struct {
	Client     ClientInfo  `json:"client"`
	ThirdParty *ThirdParty `json:"thirdParty,omitempty"`
}

type ClientInfo struct {
	ClientName       string `json:"clientName"`
	ClientVersion    string `json:"clientVersion"`
	UserAgent        string `json:"userAgent,omitempty"`
	OsName           string `json:"osName,omitempty"`
	OsVersion        string `json:"osVersion,omitempty"`
	AcceptLanguage   string `json:"hl,omitempty"`
	TimeZone         string `json:"timeZone,omitempty"`
	UtcOffsetMinutes *int   `json:"utcOffsetMinutes,omitempty"`
}

type ThirdParty struct {
	EmbedURL string `json:"embedUrl"`
}

type PlaybackContext struct {
	ContentPlaybackContext ContentPlaybackContext `json:"contentPlaybackContext"`
}

type ContentPlaybackContext struct {
	HTML5Preference    string `json:"html5Preference"`
	SignatureTimestamp int    `json:"signatureTimestamp"`
}

// ContextJSON returns the fixed context of profile as JSON. A UTC time zone
// gets an explicit zero offset.
func ContextJSON(profile ClientProfile) (json.RawMessage, error) {
	if profile.Context == nil {
		return nil, fmt.Errorf("profile %s has no fixed context", profile.ID)
	}
	ctx := *profile.Context
	if ctx.Client.TimeZone == "UTC" && ctx.Client.UtcOffsetMinutes == nil {
		zero := 0
		ctx.Client.UtcOffsetMinutes = &zero
	}
	return json.Marshal(ctx)
}

// NewPlayerRequest builds the /player body around an already serialized context.
func NewPlayerRequest(context json.RawMessage, videoID string, signatureTimestamp int, params string) *PlayerRequest {
	return &PlayerRequest{
		Context: context,
		PlaybackContext: PlaybackContext{
			ContentPlaybackContext: ContentPlaybackContext{
				HTML5Preference:    "HTML5_PREF_WANTS",
				SignatureTimestamp: signatureTimestamp,
			},
		},
		VideoID:        videoID,
		ContentCheckOk: true,
		RacyCheckOk:    true,
		Params:         params,
	}
}
