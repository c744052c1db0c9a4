package orchestrator

import (
	"fmt"
	"strings"
)

// Requested data tokens.
const (
	DataWebPage         = "web_page"
	DataRawVideoInfo    = "raw_video_info"
	DataParsedVideoInfo = "parsed_video_info"
	DataURLs            = "urls"
	DataAll             = "all"
)

var validData = map[string]bool{
	DataWebPage:         true,
	DataRawVideoInfo:    true,
	DataParsedVideoInfo: true,
	DataURLs:            true,
	DataAll:             true,
}

// RequestedData is the set of answer parts a caller asked for.
type RequestedData map[string]bool

// ParseRequestedData reads a comma separated token list. Spaces are ignored
// and an empty list means everything.
func ParseRequestedData(s string) (RequestedData, error) {
	set := RequestedData{}
	for _, token := range strings.Split(strings.ReplaceAll(s, " ", ""), ",") {
		if token == "" {
			continue
		}
		if !validData[token] {
			return nil, clientError(fmt.Sprintf("Wrong 'requested_data' value: '%s'", token), nil)
		}
		set[token] = true
	}
	if len(set) == 0 {
		set[DataAll] = true
	}
	return set, nil
}

// Has reports whether token, or "all", was requested.
func (r RequestedData) Has(token string) bool {
	return r[token] || r[DataAll]
}
