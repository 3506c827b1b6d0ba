package history

import (
	"fmt"
	"net/url"
	"sync"
)

// Entry is one history entry of a MemoryBackend.
type Entry struct {
	URL   string
	State any
	Title string
}

// MemoryBackend is an in-process Backend with a browser-like entry stack.
// Back, Forward and Go fire popstate the way a browser's buttons do.
type MemoryBackend struct {
	mu      sync.Mutex
	entries []Entry
	index   int
	onPop   []func()
}

// NewMemoryBackend starts at initial, which must be an absolute URL.
func NewMemoryBackend(initial string) *MemoryBackend {
	return &MemoryBackend{entries: []Entry{{URL: initial}}}
}

// Location implements Backend.
func (m *MemoryBackend) Location() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index].URL
}

// PushState implements Backend. url is resolved against the current
// location and forward entries are discarded.
func (m *MemoryBackend) PushState(state any, title, rawURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	abs, err := m.resolve(rawURL)
	if err != nil {
		return err
	}
	m.entries = append(m.entries[:m.index+1], Entry{URL: abs, State: state, Title: title})
	m.index++
	return nil
}

// ReplaceState implements Backend.
func (m *MemoryBackend) ReplaceState(state any, title, rawURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	abs, err := m.resolve(rawURL)
	if err != nil {
		return err
	}
	m.entries[m.index] = Entry{URL: abs, State: state, Title: title}
	return nil
}

// OnPopState implements Backend.
func (m *MemoryBackend) OnPopState(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPop = append(m.onPop, fn)
}

// Back moves one entry back. It reports false at the first entry.
func (m *MemoryBackend) Back() bool { return m.Go(-1) }

// Forward moves one entry forward. It reports false at the last entry.
func (m *MemoryBackend) Forward() bool { return m.Go(1) }

// Go moves delta entries and fires popstate. Out-of-range moves are
// ignored, as in browsers.
func (m *MemoryBackend) Go(delta int) bool {
	m.mu.Lock()
	target := m.index + delta
	if delta == 0 || target < 0 || target >= len(m.entries) {
		m.mu.Unlock()
		return false
	}
	m.index = target
	handlers := append([]func(){}, m.onPop...)
	m.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
	return true
}

// Entries returns a copy of the entry stack and the current index.
func (m *MemoryBackend) Entries() ([]Entry, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...), m.index
}

// State returns the state stored with the current entry.
func (m *MemoryBackend) State() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index].State
}

func (m *MemoryBackend) resolve(rawURL string) (string, error) {
	base, err := url.Parse(m.entries[m.index].URL)
	if err != nil {
		return "", fmt.Errorf("history: current location %q: %w", m.entries[m.index].URL, err)
	}
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("history: %w", err)
	}
	next := base.ResolveReference(ref)
	if base.IsAbs() && (next.Scheme != base.Scheme || next.Host != base.Host) {
		return "", fmt.Errorf("history: %q is not same-origin with %q", rawURL, base)
	}
	return next.String(), nil
}
