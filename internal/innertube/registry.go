package innertube

import (
	"fmt"
	"strings"
	"sync"
)

type defaultRegistry struct {
	mu      sync.RWMutex
	order   []string
	clients map[string]ClientProfile
	cookie  string
}

// NewRegistry creates a new registry with default clients.
func NewRegistry() Registry {
	return newRegistry(catalogue, cookieProfileID)
}

func newRegistry(profiles []ClientProfile, cookieID string) *defaultRegistry {
	r := &defaultRegistry{
		clients: make(map[string]ClientProfile, len(profiles)),
		cookie:  cookieID,
	}
	for _, p := range profiles {
		r.order = append(r.order, p.ID)
		r.clients[p.ID] = p
	}
	return r
}

func (r *defaultRegistry) Get(id string) (ClientProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	return c, ok
}

func (r *defaultRegistry) All() []ClientProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]ClientProfile, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.clients[id])
	}
	return all
}

// Resolve maps a requested id to a profile. Blank and "auto" pick the
// cookie-capable profile when cookies are present, else the default one.
func (r *defaultRegistry) Resolve(requestedID string, hasCookies bool) (ClientProfile, error) {
	id := strings.TrimSpace(requestedID)
	if id == "" || id == AutoProfileID {
		return r.auto(hasCookies)
	}
	if p, ok := r.Get(id); ok {
		return p, nil
	}
	return ClientProfile{}, fmt.Errorf("%w: %q", ErrProfileNotFound, id)
}

func (r *defaultRegistry) auto(hasCookies bool) (ClientProfile, error) {
	if hasCookies {
		if p, ok := r.Get(r.cookie); ok {
			return p, nil
		}
	}
	for _, p := range r.All() {
		if p.Default {
			return p, nil
		}
	}
	return ClientProfile{}, fmt.Errorf("%w: no default profile", ErrProfileNotFound)
}

func (r *defaultRegistry) List() []ProfileListing {
	out := []ProfileListing{{DisplayName: "Automatic", ID: AutoProfileID, SupportsCookies: true}}
	for _, p := range r.All() {
		out = append(out, ProfileListing{
			DisplayName:     p.DisplayName,
			ID:              p.ID,
			SupportsCookies: p.SupportsCookies,
		})
	}
	return out
}
