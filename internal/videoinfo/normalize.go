// Package videoinfo maps raw player responses into the stable output record.
package videoinfo

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/famomatic/ytresolve/internal/innertube"
)

// WebPageClientID labels data taken from the watch page itself.
const WebPageClientID = "web_page"

type CanonicalVideoInfo struct {
	PlayabilityStatus PlayabilityStatus `json:"playability_status"`

	ID            string        `json:"id,omitempty"`
	Title         string        `json:"title,omitempty"`
	OwnerChannel  *OwnerChannel `json:"owner_channel,omitempty"`
	Description   string        `json:"description,omitempty"`
	LengthSeconds int           `json:"length_seconds"`
	Length        string        `json:"length"`
	ViewCount     int64         `json:"view_count"`
	IsPrivate     bool          `json:"is_private"`
	IsLiveContent bool          `json:"is_live_content"`
	LiveInfo      *LiveInfo     `json:"live_info,omitempty"`
	IsCrawlable   bool          `json:"is_crawlable"`

	Category         string `json:"category,omitempty"`
	IsShortFormat    bool   `json:"is_short_format"`
	LikeCount        int64  `json:"like_count"`
	IsFamilySafe     bool   `json:"is_family_safe"`
	IsUnlisted       bool   `json:"is_unlisted"`
	DatePublish      string `json:"date_publish,omitempty"`
	DatePublishEpoch int64  `json:"date_publish_epoch,omitempty"`
	DateUpload       string `json:"date_upload,omitempty"`
	DateUploadEpoch  int64  `json:"date_upload_epoch,omitempty"`

	Thumbnails   []Thumbnail      `json:"thumbnails"`
	DownloadURLs []DownloadBundle `json:"download_urls"`
}

type OwnerChannel struct {
	Title string `json:"title"`
	ID    string `json:"id"`
}

type LiveInfo struct {
	IsLiveNow              bool   `json:"is_live_now"`
	IsLowLatencyLiveStream bool   `json:"is_low_latency_live_stream"`
	StartDate              string `json:"start_date,omitempty"`
	StartDateEpoch         int64  `json:"start_date_epoch,omitempty"`
	EndDate                string `json:"end_date,omitempty"`
	EndDateEpoch           int64  `json:"end_date_epoch,omitempty"`
}

// DownloadBundle is the streaming data one client call returned.
type DownloadBundle struct {
	ClientID                string `json:"client_id"`
	StreamingData           any    `json:"streaming_data,omitempty"`
	APICallingDate          string `json:"api_calling_date,omitempty"`
	APICallingDateUnixTicks int64  `json:"api_calling_date_unix_ticks,omitempty"`
}

// NewDownloadBundle stamps a bundle with the time of the API call. Ticks are
// 100ns units counted from the Unix epoch at millisecond precision.
func NewDownloadBundle(clientID string, calledAt time.Time) DownloadBundle {
	calledAt = calledAt.UTC()
	return DownloadBundle{
		ClientID:                clientID,
		APICallingDate:          calledAt.Format("2006-01-02T15:04:05.000Z07:00"),
		APICallingDateUnixTicks: calledAt.UnixMilli() * 10000,
	}
}

// Normalize parses a raw player response. Download bundles are left empty;
// only a player API call adds them.
func Normalize(raw json.RawMessage) (*CanonicalVideoInfo, error) {
	var resp innertube.PlayerResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode player response: %w", err)
	}
	return FromPlayerResponse(&resp), nil
}

func FromPlayerResponse(resp *innertube.PlayerResponse) *CanonicalVideoInfo {
	info := &CanonicalVideoInfo{
		PlayabilityStatus: Classify(resp.PlayabilityStatus),
		Length:            FormatDuration(0),
		DownloadURLs:      []DownloadBundle{},
	}

	var live *LiveInfo
	var detailThumbs, microThumbs []innertube.Thumbnail

	if d := resp.VideoDetails; d != nil {
		info.ID = d.VideoID
		info.Title = d.Title
		info.OwnerChannel = &OwnerChannel{Title: d.Author, ID: d.ChannelID}
		info.Description = d.ShortDescription
		info.LengthSeconds = atoi(d.LengthSeconds)
		info.Length = FormatDuration(info.LengthSeconds)
		info.ViewCount = atoi64(d.ViewCount)
		info.IsPrivate = d.IsPrivate
		info.IsLiveContent = d.IsLiveContent
		info.IsCrawlable = d.IsCrawlable
		if d.IsLiveContent {
			live = &LiveInfo{IsLiveNow: d.IsLive, IsLowLatencyLiveStream: d.IsLowLatencyLiveStream}
		}
		detailThumbs = d.Thumbnail.Thumbnails
	}

	if resp.Microformat != nil && resp.Microformat.PlayerMicroformatRenderer != nil {
		m := resp.Microformat.PlayerMicroformatRenderer
		if info.Description == "" {
			info.Description = m.Description.SimpleText
		}
		info.Category = m.Category
		info.IsShortFormat = m.IsShortsEligible
		info.LikeCount = atoi64(m.LikeCount)
		info.IsFamilySafe = m.IsFamilySafe
		info.IsUnlisted = m.IsUnlisted
		info.DatePublish = m.PublishDate
		info.DatePublishEpoch = epochMillis(m.PublishDate)
		info.DateUpload = m.UploadDate
		info.DateUploadEpoch = epochMillis(m.UploadDate)
		if b := m.LiveBroadcastDetails; b != nil {
			if live == nil {
				live = &LiveInfo{}
			}
			live.IsLiveNow = b.IsLiveNow
			if b.StartTimestamp != "" {
				live.StartDate = b.StartTimestamp
				live.StartDateEpoch = epochMillis(b.StartTimestamp)
				if b.EndTimestamp != "" {
					live.EndDate = b.EndTimestamp
					live.EndDateEpoch = epochMillis(b.EndTimestamp)
				}
			}
		}
		microThumbs = m.Thumbnail.Thumbnails
	}
	info.LiveInfo = live

	info.Thumbnails = MergeThumbnails(detailThumbs, microThumbs)
	if info.Thumbnails == nil {
		info.Thumbnails = []Thumbnail{}
	}

	return info
}

// PrependDownloadBundle puts b in front of the existing bundles.
func (i *CanonicalVideoInfo) PrependDownloadBundle(b DownloadBundle) {
	i.DownloadURLs = append([]DownloadBundle{b}, i.DownloadURLs...)
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

func epochMillis(s string) int64 {
	if s == "" {
		return 0
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoi64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
