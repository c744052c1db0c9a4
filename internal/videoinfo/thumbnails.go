package videoinfo

import (
	"sort"
	"strings"

	"github.com/famomatic/ytresolve/internal/innertube"
)

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Fallback size of the maxres placeholder image.
const (
	maxresWidth  = 1280
	maxresHeight = 720
)

// MergeThumbnails ranks the video details and microformat thumbnail lists.
// Video details entries lead, unique microformat entries follow. The first
// entry is the one to display.
func MergeThumbnails(details, micro []innertube.Thumbnail) []Thumbnail {
	var out []Thumbnail
	for _, t := range sortedByHeight(details) {
		out = append(out, Thumbnail(t))
	}
	if len(out) > 0 && out[0].Height == 1080 && strings.Contains(out[0].URL, "maxres") {
		out[0].Width = maxresWidth
		out[0].Height = maxresHeight
	}

	for _, t := range sortedByHeight(micro) {
		if containsURL(out, t.URL) {
			continue
		}
		out = append(out, Thumbnail(t))
	}
	if len(out) == 0 {
		return out
	}

	for _, t := range out {
		if strings.Contains(t.URL, "webp") {
			jpg := t
			jpg.URL = strings.Replace(strings.Replace(t.URL, "vi_webp", "vi", 1), ".webp", ".jpg", 1)
			out = append([]Thumbnail{jpg}, out...)
			break
		}
	}

	if i := strings.IndexByte(out[0].URL, '?'); i >= 0 {
		stripped := out[0]
		stripped.URL = stripped.URL[:i]
		out = append([]Thumbnail{stripped}, out...)
	}
	return out
}

func sortedByHeight(list []innertube.Thumbnail) []innertube.Thumbnail {
	sorted := append([]innertube.Thumbnail(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Height > sorted[j].Height
	})
	return sorted
}

func containsURL(list []Thumbnail, url string) bool {
	for _, t := range list {
		if t.URL == url {
			return true
		}
	}
	return false
}
