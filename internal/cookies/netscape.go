package cookies

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const httpOnlyPrefix = "#HttpOnly_"

// ParseNetscape parses a Netscape cookies.txt export.
// Format: domain flag path secure expiration name value
func ParseNetscape(r io.Reader) ([]Cookie, error) {
	var out []Cookie
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		// Browser exports mark HttpOnly cookies with a comment-like prefix.
		text = strings.TrimPrefix(text, httpOnlyPrefix)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		parts := strings.Split(text, "\t")
		if len(parts) < 7 {
			continue
		}
		name := strings.TrimSpace(parts[5])
		if name == "" {
			continue
		}
		out = append(out, Cookie{
			Domain: parts[0],
			Name:   name,
			Value:  parts[6],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cookies line %d: %w", line, err)
	}
	return out, nil
}
