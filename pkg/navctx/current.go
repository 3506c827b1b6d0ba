package navctx

import (
	"net/url"
	"sync"

	"go.uber.org/atomic"

	"github.com/vango-dev/waypoint/pkg/history"
	"github.com/vango-dev/waypoint/pkg/routepath"
)

type watcher struct {
	fn   func(*url.URL)
	live atomic.Bool
}

// CurrentURL is the store's location as a derived reactive value. It is
// recomputed once per store notification and then every watcher runs once,
// in registration order.
type CurrentURL struct {
	store   *history.Store
	dispose func()
	version atomic.Uint64

	mu       sync.RWMutex
	current  *url.URL
	watchers []*watcher
}

// NewCurrentURL derives a CurrentURL from store. Close releases its
// listener.
func NewCurrentURL(store *history.Store) *CurrentURL {
	c := &CurrentURL{store: store}
	c.current = parseLocation(store.Location())
	c.dispose = store.Listen(c.update)
	return c
}

// Get returns a copy of the current URL.
func (c *CurrentURL) Get() *url.URL {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u := *c.current
	return &u
}

// Path returns the escaped path of the current URL.
func (c *CurrentURL) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return routepath.PathOf(c.current.String())
}

// Version counts the notifications seen so far.
func (c *CurrentURL) Version() uint64 {
	return c.version.Load()
}

// Watch registers fn to run after each recomputation. The returned
// function removes it.
func (c *CurrentURL) Watch(fn func(*url.URL)) (dispose func()) {
	w := &watcher{fn: fn}
	w.live.Store(true)

	c.mu.Lock()
	c.watchers = append(c.watchers, w)
	c.mu.Unlock()

	return func() {
		if !w.live.CompareAndSwap(true, false) {
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, existing := range c.watchers {
			if existing == w {
				c.watchers = append(c.watchers[:i:i], c.watchers[i+1:]...)
				return
			}
		}
	}
}

// Close stops following the store. Watchers are kept but no longer run.
func (c *CurrentURL) Close() {
	c.dispose()
}

func (c *CurrentURL) update() {
	next := parseLocation(c.store.Location())

	c.mu.Lock()
	c.current = next
	watchers := make([]*watcher, len(c.watchers))
	copy(watchers, c.watchers)
	c.mu.Unlock()

	c.version.Inc()

	for _, w := range watchers {
		if !w.live.Load() {
			continue
		}
		u := *next
		w.fn(&u)
	}
}

// CurrentRoute parses the current path with parse.
func CurrentRoute[U any](c *CurrentURL, parse func(path string) (U, bool)) (U, bool) {
	return parse(c.Path())
}

func parseLocation(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{Path: "/"}
	}
	return u
}
