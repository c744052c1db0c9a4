package innertube

import (
	"encoding/json"
	"strings"
)

// PlayerResponse is the top-level response from the /player endpoint and the
// watch-page ytInitialPlayerResponse blob. StreamingData stays raw so callers
// can repair and re-emit it without losing unknown fields.
type PlayerResponse struct {
	PlayabilityStatus PlayabilityStatus `json:"playabilityStatus"`
	StreamingData     json.RawMessage   `json:"streamingData"`
	VideoDetails      *VideoDetails     `json:"videoDetails"`
	Microformat       *Microformat      `json:"microformat"`
}

type PlayabilityStatus struct {
	Status          string       `json:"status"`
	Reason          string       `json:"reason"`
	PlayableInEmbed bool         `json:"playableInEmbed"`
	ErrorScreen     *ErrorScreen `json:"errorScreen"`
}

func (p *PlayabilityStatus) IsOK() bool {
	return strings.EqualFold(p.Status, "OK")
}

type ErrorScreen struct {
	PlayerErrorMessageRenderer          *PlayerErrorMessageRenderer `json:"playerErrorMessageRenderer"`
	PlayerLegacyDesktopYpcOfferRenderer *YpcOfferRenderer           `json:"playerLegacyDesktopYpcOfferRenderer"`
}

type PlayerErrorMessageRenderer struct {
	Reason    LangText         `json:"reason"`
	Subreason LangText         `json:"subreason"`
	Thumbnail ThumbnailDetails `json:"thumbnail"`
}

type YpcOfferRenderer struct {
	ItemTitle        string `json:"itemTitle"`
	OfferDescription string `json:"offerDescription"`
}

type VideoDetails struct {
	VideoID                string           `json:"videoId"`
	Title                  string           `json:"title"`
	LengthSeconds          string           `json:"lengthSeconds"`
	ChannelID              string           `json:"channelId"`
	ShortDescription       string           `json:"shortDescription"`
	IsCrawlable            bool             `json:"isCrawlable"`
	Thumbnail              ThumbnailDetails `json:"thumbnail"`
	ViewCount              string           `json:"viewCount"`
	Author                 string           `json:"author"`
	IsPrivate              bool             `json:"isPrivate"`
	IsLiveContent          bool             `json:"isLiveContent"`
	IsLive                 bool             `json:"isLive"`
	IsLowLatencyLiveStream bool             `json:"isLowLatencyLiveStream"`
}

type ThumbnailDetails struct {
	Thumbnails []Thumbnail `json:"thumbnails"`
}

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Microformat struct {
	PlayerMicroformatRenderer *PlayerMicroformatRenderer `json:"playerMicroformatRenderer"`
}

type PlayerMicroformatRenderer struct {
	Thumbnail            ThumbnailDetails      `json:"thumbnail"`
	Description          SimpleText            `json:"description"`
	IsFamilySafe         bool                  `json:"isFamilySafe"`
	IsUnlisted           bool                  `json:"isUnlisted"`
	IsShortsEligible     bool                  `json:"isShortsEligible"`
	LikeCount            string                `json:"likeCount"`
	Category             string                `json:"category"`
	PublishDate          string                `json:"publishDate"`
	UploadDate           string                `json:"uploadDate"`
	LiveBroadcastDetails *LiveBroadcastDetails `json:"liveBroadcastDetails"`
}

type LiveBroadcastDetails struct {
	IsLiveNow      bool   `json:"isLiveNow"`
	StartTimestamp string `json:"startTimestamp"`
	EndTimestamp   string `json:"endTimestamp"`
}

type SimpleText struct {
	SimpleText string `json:"simpleText"`
}

type LangText struct {
	SimpleText string    `json:"simpleText"`
	Runs       []TextRun `json:"runs"`
}

// String joins the runs, or returns the simple text when there are none.
func (t LangText) String() string {
	if len(t.Runs) == 0 {
		return t.SimpleText
	}
	var b strings.Builder
	for _, r := range t.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

type TextRun struct {
	Text string `json:"text"`
}

// HasStreamingData reports whether the response carries a non-null streamingData object.
func (r *PlayerResponse) HasStreamingData() bool {
	s := strings.TrimSpace(string(r.StreamingData))
	return s != "" && s != "null"
}
