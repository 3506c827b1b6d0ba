package wsnav

import (
	stderrors "errors"
	"strings"
	"sync"

	"go.uber.org/atomic"

	"github.com/vango-dev/waypoint/internal/errors"
	"github.com/vango-dev/waypoint/pkg/routepath"
)

// ErrClosed is returned by a Backend whose connection has gone away.
var ErrClosed = stderrors.New("wsnav: connection closed")

// Backend is a history.Backend that drives the browser's history API over
// a session's WebSocket. Pushes and replaces are sent as frames; popstate
// frames from the browser update the location and fire the popstate
// handlers.
type Backend struct {
	origin string
	send   func(Frame) error

	mu       sync.Mutex
	location string
	onPop    []func()
	closed   atomic.Bool
}

// NewBackend starts at path on origin ("https://example.com"). send
// writes one frame to the browser.
func NewBackend(origin, path string, send func(Frame) error) *Backend {
	return &Backend{
		origin:   strings.TrimSuffix(origin, "/"),
		send:     send,
		location: strings.TrimSuffix(origin, "/") + path,
	}
}

// Location implements history.Backend.
func (b *Backend) Location() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.location
}

// PushState implements history.Backend. state and title are not sent;
// the browser entry carries neither.
func (b *Backend) PushState(state any, title, url string) error {
	return b.change(FramePush, url)
}

// ReplaceState implements history.Backend.
func (b *Backend) ReplaceState(state any, title, url string) error {
	return b.change(FrameReplace, url)
}

// OnPopState implements history.Backend.
func (b *Backend) OnPopState(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onPop = append(b.onPop, fn)
}

// Pop records a back/forward navigation the browser reported and runs the
// popstate handlers.
func (b *Backend) Pop(url string) error {
	path, err := b.target(url)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.location = b.origin + path
	handlers := append([]func(){}, b.onPop...)
	b.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
	return nil
}

// Close makes later pushes fail with ErrClosed.
func (b *Backend) Close() {
	b.closed.Store(true)
}

func (b *Backend) change(frameType, url string) error {
	if b.closed.Load() {
		return errors.New(errors.CodeStoreClosed).Wrap(ErrClosed)
	}
	path, err := b.target(url)
	if err != nil {
		return err
	}
	if err := b.send(Frame{T: frameType, URL: path}); err != nil {
		return errors.New(errors.CodeStoreClosed).Wrap(err)
	}

	b.mu.Lock()
	b.location = b.origin + path
	b.mu.Unlock()
	return nil
}

func (b *Backend) target(url string) (string, error) {
	return navTarget(b.origin, url)
}

// navTarget reduces url to a canonical path with its query. Absolute URLs
// are accepted only on origin.
func navTarget(origin, url string) (string, error) {
	url = stripOrigin(origin, url)
	path, err := routepath.CanonicalizeAndValidateNavPath(url)
	if err != nil {
		return "", errors.New(errors.CodeInvalidNavPath).WithDetail("%q", url).Wrap(err)
	}
	return path, nil
}

// stripOrigin returns url relative to origin, or url unchanged when it is
// not on origin.
func stripOrigin(origin, url string) string {
	rest, ok := strings.CutPrefix(url, origin)
	if !ok || origin == "" || (rest != "" && rest[0] != '/' && rest[0] != '?') {
		return url
	}
	if rest == "" || rest[0] == '?' {
		return "/" + rest
	}
	return rest
}
