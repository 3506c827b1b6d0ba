// Package wsnav runs history stores for browser tabs connected over
// WebSocket.
//
// The browser side is a small script (client/dist) that forwards in-app
// link clicks and popstate events as JSON frames and applies the push,
// replace and render frames it receives. On the server each tab gets a
// Session with its own history.Store whose Backend is the socket, so the
// router packages run unchanged on the server.
package wsnav

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/waypoint/pkg/history"
)

// Observer receives session events, typically for metrics.
type Observer interface {
	SessionOpened()
	SessionClosed()
	FrameReceived(frameType string)
	FrameSent(frameType string)
	WebSocketError(errorType string)
}

// Config holds connection limits.
type Config struct {
	// ReadTimeout bounds the wait for the next client frame.
	ReadTimeout time.Duration

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// HandshakeTimeout bounds the wait for the hello frame.
	HandshakeTimeout time.Duration

	// MaxMessageSize limits incoming frames in bytes.
	MaxMessageSize int64

	// CheckOrigin validates the upgrade request's Origin header. Nil uses
	// gorilla/websocket's same-origin check.
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns the default limits.
func DefaultConfig() Config {
	return Config{
		ReadTimeout:      2 * time.Minute,
		WriteTimeout:     10 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		MaxMessageSize:   16 * 1024,
	}
}

// Option configures a Handler.
type Option func(*Handler)

// WithConfig replaces the connection limits. Zero fields keep their
// defaults.
func WithConfig(c Config) Option {
	return func(h *Handler) {
		d := DefaultConfig()
		if c.ReadTimeout == 0 {
			c.ReadTimeout = d.ReadTimeout
		}
		if c.WriteTimeout == 0 {
			c.WriteTimeout = d.WriteTimeout
		}
		if c.HandshakeTimeout == 0 {
			c.HandshakeTimeout = d.HandshakeTimeout
		}
		if c.MaxMessageSize == 0 {
			c.MaxMessageSize = d.MaxMessageSize
		}
		h.config = c
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithObserver sets the session observer.
func WithObserver(o Observer) Option {
	return func(h *Handler) {
		h.observer = o
	}
}

// WithHistoryOptions adds options for every session's history store.
func WithHistoryOptions(opts ...history.Option) Option {
	return func(h *Handler) {
		h.historyOpts = append(h.historyOpts, opts...)
	}
}

// WithSessionHook runs fn after each handshake, before the first render.
func WithSessionHook(fn func(*Session)) Option {
	return func(h *Handler) {
		h.onSession = fn
	}
}

// Handler upgrades requests to WebSocket sessions.
type Handler struct {
	view        templ.Component
	config      Config
	logger      *slog.Logger
	observer    Observer
	historyOpts []history.Option
	onSession   func(*Session)
	upgrader    websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewHandler creates a handler that renders view for every session. view
// renders under navctx.WithHistory with the session's store.
func NewHandler(view templ.Component, opts ...Option) *Handler {
	h := &Handler{
		view:     view,
		config:   DefaultConfig(),
		logger:   slog.Default(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.config.CheckOrigin,
	}
	return h
}

// ServeHTTP upgrades the request and runs the session until the
// connection closes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		h.logger.Warn("websocket upgrade failed", "error", err)
		if h.observer != nil {
			h.observer.WebSocketError("upgrade")
		}
		return
	}
	conn.SetReadLimit(h.config.MaxMessageSize)

	s := newSession(r.Context(), conn, h)
	defer s.Close()

	if err := s.handshake(origin(r), h.historyOpts); err != nil {
		s.logger.Warn("handshake failed", "error", err)
		s.sendError(err)
		return
	}

	h.track(s)
	defer h.untrack(s)

	if h.onSession != nil {
		h.onSession(s)
	}
	s.render()
	s.readLoop()
}

// Sessions returns the number of open sessions.
func (h *Handler) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close ends every open session.
func (h *Handler) Close() {
	h.mu.Lock()
	open := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		open = append(open, s)
	}
	h.mu.Unlock()

	for _, s := range open {
		s.Close()
	}
}

func (h *Handler) track(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()
	if h.observer != nil {
		h.observer.SessionOpened()
	}
}

func (h *Handler) untrack(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s.ID)
	h.mu.Unlock()
	if h.observer != nil {
		h.observer.SessionClosed()
	}
}

func origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
