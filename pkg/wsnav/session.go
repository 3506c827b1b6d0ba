package wsnav

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"github.com/vango-dev/waypoint/internal/errors"
	"github.com/vango-dev/waypoint/pkg/history"
	"github.com/vango-dev/waypoint/pkg/link"
	"github.com/vango-dev/waypoint/pkg/navctx"
)

// Session is one browser tab connected over WebSocket. It owns the tab's
// history store; every frame of the connection is handled on the read
// loop, so one tab's navigations run to completion in order.
type Session struct {
	ID string

	ctx      context.Context
	conn     *websocket.Conn
	config   Config
	logger   *slog.Logger
	observer Observer
	view     templ.Component

	backend *Backend
	store   *history.Store
	current *navctx.CurrentURL

	writeMu sync.Mutex
	closed  atomic.Bool
	done    chan struct{}
}

func newSession(ctx context.Context, conn *websocket.Conn, h *Handler) *Session {
	id := uuid.NewString()
	return &Session{
		ID:       id,
		ctx:      ctx,
		conn:     conn,
		config:   h.config,
		logger:   h.logger.With("session_id", id),
		observer: h.observer,
		view:     h.view,
		done:     make(chan struct{}),
	}
}

// Store returns the session's history store. It is nil before the
// handshake completes.
func (s *Session) Store() *history.Store {
	return s.store
}

// CurrentURL returns the value the session renders from. It is nil before
// the handshake completes.
func (s *Session) CurrentURL() *navctx.CurrentURL {
	return s.current
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// handshake waits for the hello frame and builds the store at the URL the
// browser reports.
func (s *Session) handshake(origin string, historyOpts []history.Option) error {
	s.conn.SetReadDeadline(time.Now().Add(s.config.HandshakeTimeout))
	_, msg, err := s.conn.ReadMessage()
	if err != nil {
		return errors.New(errors.CodeConnection).WithDetail("handshake").Wrap(err)
	}

	f, err := DecodeFrame(msg)
	if err != nil {
		return err
	}
	s.received(f.T)
	if f.T != FrameHello {
		return errors.New(errors.CodeMalformedFrame).WithDetail("expected hello, got %s", f.T)
	}

	path, err := navTarget(origin, f.URL)
	if err != nil {
		return err
	}
	s.backend = NewBackend(origin, path, s.send)

	opts := append([]history.Option{history.WithLogger(s.logger)}, historyOpts...)
	s.store = history.New(s.backend, opts...)
	s.current = navctx.NewCurrentURL(s.store)
	s.current.Watch(func(*url.URL) { s.render() })

	// The browser keeps the URL it asked for until told otherwise.
	if stripOrigin(origin, f.URL) != path {
		if err := s.send(Frame{T: FrameReplace, URL: path}); err != nil {
			return err
		}
	}

	s.logger.Info("session started", "url", s.backend.Location())
	return nil
}

// readLoop handles frames until the connection closes.
func (s *Session) readLoop() {
	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
				s.wsError("read")
			}
			return
		}

		f, err := DecodeFrame(msg)
		if err != nil {
			s.logger.Warn("frame decode error", "error", err)
			s.wsError("decode")
			s.sendError(err)
			continue
		}
		s.received(f.T)

		if err := s.handle(f); err != nil {
			s.logger.Warn("frame rejected", "type", f.T, "error", err)
			s.sendError(err)
		}
	}
}

func (s *Session) handle(f Frame) error {
	switch f.T {
	case FrameClick:
		path, err := s.backend.target(f.Href)
		if err != nil {
			return err
		}
		return link.Handler(s.store, path, f.Target)(f.ClickEvent())

	case FramePopState:
		return s.backend.Pop(f.URL)

	case FrameHello:
		// A reconnecting client repeats its hello; the current URL wins.
		return s.backend.Pop(f.URL)
	}
	return errors.New(errors.CodeUnknownFrame).WithDetail("type %q", f.T)
}

// render sends the view as rendered under this session's store.
func (s *Session) render() {
	if s.view == nil {
		return
	}
	var buf bytes.Buffer
	ctx := navctx.WithCurrentURL(s.ctx, s.current)
	if err := s.view.Render(ctx, &buf); err != nil {
		s.logger.Error("render failed", "url", s.store.Location(), "error", err)
		s.sendError(err)
		return
	}
	if err := s.send(Frame{T: FrameRender, HTML: buf.String()}); err != nil {
		s.logger.Warn("render not sent", "error", err)
	}
}

// send writes one frame. It is safe for concurrent use.
func (s *Session) send(f Frame) error {
	if s.closed.Load() {
		return ErrClosed
	}
	data, err := f.Encode()
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.wsError("write")
		return err
	}
	if s.observer != nil {
		s.observer.FrameSent(f.T)
	}
	return nil
}

func (s *Session) sendError(err error) {
	_ = s.send(errorFrame(err))
}

func (s *Session) received(frameType string) {
	if s.observer != nil {
		s.observer.FrameReceived(frameType)
	}
}

func (s *Session) wsError(kind string) {
	if s.observer != nil {
		s.observer.WebSocketError(kind)
	}
}

// Close ends the session. Later pushes on its store fail with ErrClosed.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	if s.backend != nil {
		s.backend.Close()
	}
	if s.current != nil {
		s.current.Close()
	}
	close(s.done)

	s.writeMu.Lock()
	s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	s.writeMu.Unlock()
	s.conn.Close()

	s.logger.Info("session closed")
}
