package playerjs

import "sync"

// Memo maps encrypted values to their decrypted form. It never evicts.
type Memo struct {
	mu    sync.Mutex
	items map[string]string
}

func NewMemo() *Memo {
	return &Memo{items: make(map[string]string)}
}

func (m *Memo) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok
}

func (m *Memo) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
}

func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
