// Package webpage recovers the embedded player response, the ytcfg session
// configuration and the player script URL from downloaded watch pages.
package webpage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// BaseURL prefixes relative player script paths.
const BaseURL = "https://www.youtube.com"

var (
	ErrNoVideoInfoFound     = errors.New("no video info found")
	ErrNoConfigFound        = errors.New("no ytcfg found")
	ErrNoPlayerURLFound     = errors.New("no player url found")
	ErrNoSignatureTimestamp = errors.New("no signature timestamp found")
)

const matchTimeout = 2 * time.Second

var (
	playerResponseStart = mustCompile(`ytInitialPlayerResponse\s*=\s*(?=\{")`, regexp2.None)
	playerResponseEnd   = mustCompile(`\};(?:const|var|let|</script)`, regexp2.None)
	ytcfgPattern        = mustCompile(`ytcfg\.set\((?<ok>.*"}+)\)`, regexp2.Multiline)
	jsURLPattern        = mustCompile(`"jsUrl":\s*"(?<ok>(?:[^"\\]|\\.)*?)"`, regexp2.None)
	stsPattern          = mustCompile(`signatureTimestamp\s*:\s*(?<sts>[0-9]*)`, regexp2.None)
)

func mustCompile(pattern string, opts regexp2.RegexOptions) *regexp2.Regexp {
	re := regexp2.MustCompile(pattern, opts)
	re.MatchTimeout = matchTimeout
	return re
}

// PlayerResponse returns the ytInitialPlayerResponse JSON object embedded in html.
// Every terminator after the assignment is tried in order until the text up to
// it parses, so trailing script on the same line does not break extraction.
func PlayerResponse(html string) (json.RawMessage, error) {
	text := []rune(html)
	m, err := playerResponseStart.FindRunesMatch(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoVideoInfoFound, err)
	}
	if m == nil {
		return nil, ErrNoVideoInfoFound
	}
	start := m.Index + m.Length

	end, err := playerResponseEnd.FindRunesMatchStartingAt(text, start)
	for ; end != nil; end, err = playerResponseEnd.FindNextMatch(end) {
		raw := string(text[start : end.Index+1])
		if json.Valid([]byte(raw)) {
			return json.RawMessage(raw), nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoVideoInfoFound, err)
	}
	return nil, fmt.Errorf("%w: malformed player response", ErrNoVideoInfoFound)
}

// Config returns the first ytcfg.set payload of html that parses as JSON.
// Several calls may share a line, so a greedy match that spans more than one
// payload is retried from the next call site.
func Config(html string) (*YTConfig, error) {
	text := []rune(html)
	start := 0
	for {
		m, err := ytcfgPattern.FindRunesMatchStartingAt(text, start)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoConfigFound, err)
		}
		if m == nil {
			return nil, ErrNoConfigFound
		}
		raw := m.GroupByName("ok").String()
		if json.Valid([]byte(raw)) {
			return NewYTConfig([]byte(raw)), nil
		}
		start = m.Index + 1
	}
}

// PlayerURL returns the absolute player script URL named by cfg. The known
// config keys are read first; any other "jsUrl" field is the fallback.
func PlayerURL(cfg *YTConfig) (string, error) {
	if cfg == nil {
		return "", ErrNoPlayerURLFound
	}
	path := cfg.JSURL()
	if path == "" {
		m, err := jsURLPattern.FindStringMatch(string(cfg.Raw()))
		if err != nil || m == nil {
			return "", ErrNoPlayerURLFound
		}
		if err := json.Unmarshal([]byte(`"`+m.GroupByName("ok").String()+`"`), &path); err != nil || path == "" {
			return "", ErrNoPlayerURLFound
		}
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	return BaseURL + path, nil
}

// SignatureTimestamp returns the signatureTimestamp constant of a player script.
func SignatureTimestamp(script string) (int, error) {
	m, err := stsPattern.FindStringMatch(script)
	if err != nil || m == nil {
		return 0, ErrNoSignatureTimestamp
	}
	sts, err := strconv.Atoi(m.GroupByName("sts").String())
	if err != nil || sts <= 0 {
		return 0, ErrNoSignatureTimestamp
	}
	return sts, nil
}

// Page is one downloaded watch page with its best-effort extractions.
type Page struct {
	HTML      string
	Config    *YTConfig
	PlayerURL string
	FetchedAt time.Time
}

// ParsePage runs the config and player URL extractions over html.
// Missing pieces are left empty.
func ParsePage(html string, fetchedAt time.Time) *Page {
	p := &Page{HTML: html, FetchedAt: fetchedAt}
	if cfg, err := Config(html); err == nil {
		p.Config = cfg
		if u, err := PlayerURL(cfg); err == nil {
			p.PlayerURL = u
		}
	}
	return p
}
