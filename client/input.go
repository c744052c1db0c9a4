package client

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	youtubeIDPattern = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
	pathIDPattern    = regexp.MustCompile(`^/(?:shorts|embed|v|live|e)/([0-9A-Za-z_-]{11})`)
)

// ExtractVideoID accepts either a raw id or common YouTube URL shapes.
func ExtractVideoID(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrInvalidInput
	}
	if youtubeIDPattern.MatchString(s) {
		return s, nil
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", ErrInvalidInput
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if youtubeIDPattern.MatchString(id) {
			return id, nil
		}
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtube-nocookie.com":
		if id := u.Query().Get("v"); youtubeIDPattern.MatchString(id) {
			return id, nil
		}
		if m := pathIDPattern.FindStringSubmatch(u.Path); len(m) == 2 {
			return m[1], nil
		}
	}
	return "", ErrInvalidInput
}
