package cookies

import (
	"net/url"
	"strings"
	"sync"
)

// Cookie is the wire form of a session cookie.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
}

// FilterForURL keeps the cookies whose domain contains the host of rawURL,
// with a leading "www." removed. The first cookie of each name wins.
func FilterForURL(list []Cookie, rawURL string) []Cookie {
	if len(list) == 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")

	seen := make(map[string]struct{}, len(list))
	out := make([]Cookie, 0, len(list))
	for _, c := range list {
		if !strings.Contains(c.Domain, host) {
			continue
		}
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		out = append(out, c)
	}
	return out
}

// HeaderValue formats cookies as a Cookie header value.
func HeaderValue(list []Cookie) string {
	parts := make([]string, 0, len(list))
	for _, c := range list {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// Get returns the first cookie named name.
func Get(list []Cookie, name string) (Cookie, bool) {
	for _, c := range list {
		if c.Name == name {
			return c, true
		}
	}
	return Cookie{}, false
}

// Store holds the process-wide default cookies.
type Store struct {
	mu      sync.RWMutex
	cookies []Cookie
}

func NewStore() *Store {
	return &Store{}
}

// Set replaces the stored cookies.
func (s *Store) Set(list []Cookie) {
	cp := make([]Cookie, len(list))
	copy(cp, list)
	s.mu.Lock()
	s.cookies = cp
	s.mu.Unlock()
}

// Clear removes all stored cookies.
func (s *Store) Clear() {
	s.mu.Lock()
	s.cookies = nil
	s.mu.Unlock()
}

// Snapshot returns a copy of the stored cookies.
func (s *Store) Snapshot() []Cookie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.cookies) == 0 {
		return nil
	}
	cp := make([]Cookie, len(s.cookies))
	copy(cp, s.cookies)
	return cp
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cookies)
}
