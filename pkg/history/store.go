// Package history owns the current URL of a page and notifies listeners when
// it changes.
//
// A Store wraps a Backend, the host's native navigation API: the browser's
// history object in a wasm build, a WebSocket session for the thin client,
// or a MemoryBackend in tests and headless tools. PushState and ReplaceState
// mutate the backend first and then notify every listener, so a listener
// always reads the new location. Native back/forward navigation reported by
// the backend goes through the same notification path.
package history

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Backend is the native navigation API a Store drives.
type Backend interface {
	// Location returns the current absolute URL.
	Location() string

	// PushState adds a history entry for url without reloading.
	PushState(state any, title, url string) error

	// ReplaceState rewrites the current entry.
	ReplaceState(state any, title, url string) error

	// OnPopState registers fn to run after native back/forward navigation.
	// It is never called for the backend's own PushState or ReplaceState.
	OnPopState(fn func())
}

// Kind identifies what changed the location.
type Kind int

const (
	KindPush Kind = iota
	KindReplace
	KindPop
)

func (k Kind) String() string {
	switch k {
	case KindPush:
		return "push"
	case KindReplace:
		return "replace"
	case KindPop:
		return "pop"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Observer receives navigation events, typically for metrics and tracing.
type Observer interface {
	// ObserveNavigation is called after every backend mutation attempt.
	// err is nil on success. Pops always succeed.
	ObserveNavigation(kind Kind, url string, err error)

	// ObserveNotify is called after a notification round completes.
	ObserveNotify(kind Kind, listeners int, elapsed time.Duration)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver sets the navigation observer.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observer = o
	}
}

type listener struct {
	id   uint64
	fn   func()
	live atomic.Bool
}

// Store is the single source of truth for where the page currently is.
//
// Notification runs to completion: a navigation started while listeners are
// being notified, from a listener or from another goroutine, updates the
// backend immediately but its own round runs after the current round ends.
// Every successful navigation produces exactly one round. The goroutine that
// is already notifying runs the queued rounds, so PushState may return
// before its listeners have run when it races with another navigation.
type Store struct {
	backend  Backend
	logger   *slog.Logger
	observer Observer

	mu        sync.Mutex
	listeners []*listener
	nextID    uint64
	pending   []Kind
	notifying bool
}

// New creates a store over backend and registers for its popstate events.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	backend.OnPopState(func() {
		if s.observer != nil {
			s.observer.ObserveNavigation(KindPop, backend.Location(), nil)
		}
		s.notify(KindPop)
	})
	return s
}

// Location returns the current absolute URL.
func (s *Store) Location() string {
	return s.backend.Location()
}

// Listen appends fn to the listener list and returns a function that
// removes it. A disposed listener is not called again, even by a round
// already in progress. Dispose is idempotent.
func (s *Store) Listen(fn func()) (dispose func()) {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	s.nextID++
	l := &listener{id: s.nextID, fn: fn}
	l.live.Store(true)
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	return func() {
		if !l.live.CompareAndSwap(true, false) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, existing := range s.listeners {
			if existing.id == l.id {
				// Keep registration order.
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Listeners returns the number of registered listeners.
func (s *Store) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// PushState adds a history entry for url and notifies every listener in
// registration order. If the backend fails nothing is notified.
func (s *Store) PushState(state any, title, url string) error {
	return s.navigate(KindPush, url, func() error {
		return s.backend.PushState(state, title, url)
	})
}

// ReplaceState rewrites the current entry and notifies like PushState.
func (s *Store) ReplaceState(state any, title, url string) error {
	return s.navigate(KindReplace, url, func() error {
		return s.backend.ReplaceState(state, title, url)
	})
}

func (s *Store) navigate(kind Kind, url string, mutate func() error) error {
	err := mutate()
	if s.observer != nil {
		s.observer.ObserveNavigation(kind, url, err)
	}
	if err != nil {
		s.logger.Warn("history navigation failed", "kind", kind, "url", url, "error", err)
		return err
	}
	s.logger.Debug("history navigation", "kind", kind, "url", url)
	s.notify(kind)
	return nil
}

// notify queues a round and, unless a round is already running, drains the
// queue. Listeners are copied before each round and called without the lock.
func (s *Store) notify(kind Kind) {
	s.mu.Lock()
	s.pending = append(s.pending, kind)
	if s.notifying {
		s.mu.Unlock()
		return
	}
	s.notifying = true

	for len(s.pending) > 0 {
		next := s.pending[0]
		s.pending = s.pending[1:]
		subs := make([]*listener, len(s.listeners))
		copy(subs, s.listeners)
		s.mu.Unlock()

		s.round(next, subs)

		s.mu.Lock()
	}
	s.notifying = false
	s.pending = nil
	s.mu.Unlock()
}

func (s *Store) round(kind Kind, subs []*listener) {
	start := time.Now()
	called := 0
	for _, l := range subs {
		if !l.live.Load() {
			continue
		}
		s.call(l)
		called++
	}
	if s.observer != nil {
		s.observer.ObserveNotify(kind, called, time.Since(start))
	}
}

// call runs one listener. A panicking listener is logged and does not stop
// the round.
func (s *Store) call(l *listener) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("history listener panicked", "listener", l.id, "panic", r)
		}
	}()
	l.fn()
}
