// Package server serves the demo application: the document shell for every
// path, the thin client script, the navigation WebSocket, health and
// metrics endpoints.
//
// Routes:
//
//	GET /_waypoint/client.js   thin client (ETag revalidated)
//	GET /_waypoint/ws          navigation session (WebSocket)
//	GET /healthz               liveness
//	GET <metrics path>         Prometheus exposition, when enabled
//	GET /*                     document shell
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/waypoint/internal/app"
	"github.com/vango-dev/waypoint/internal/config"
	"github.com/vango-dev/waypoint/internal/errors"
	"github.com/vango-dev/waypoint/pkg/history"
	"github.com/vango-dev/waypoint/pkg/telemetry"
	"github.com/vango-dev/waypoint/pkg/wsnav"
)

const (
	// ClientPath serves the thin client script.
	ClientPath = "/_waypoint/client.js"

	// WebSocketPath accepts navigation sessions.
	WebSocketPath = "/_waypoint/ws"

	// HealthPath answers liveness probes.
	HealthPath = "/healthz"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTelemetry records navigation, parse and session metrics on rec and
// exposes gatherer at the configured metrics path.
func WithTelemetry(rec *telemetry.Recorder, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.recorder = rec
		s.gatherer = gatherer
	}
}

// Server is the HTTP front of the application.
type Server struct {
	config   *config.Config
	logger   *slog.Logger
	recorder *telemetry.Recorder
	gatherer prometheus.Gatherer

	ws         *wsnav.Handler
	router     chi.Router
	httpServer *http.Server
}

// New creates a server for cfg. cfg must be valid.
func New(cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		config:   cfg,
		logger:   slog.Default(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ws = wsnav.NewHandler(s.page(), s.sessionOptions()...)
	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}
	return s
}

func (s *Server) page() templ.Component {
	if s.recorder == nil {
		return app.Page()
	}
	return app.PageFor(app.Routes.WithObserver(s.recorder).Parse)
}

func (s *Server) sessionOptions() []wsnav.Option {
	opts := []wsnav.Option{
		wsnav.WithLogger(s.logger),
		wsnav.WithConfig(wsnav.Config{
			ReadTimeout:      s.config.Session.ReadTimeout.Std(),
			WriteTimeout:     s.config.Session.WriteTimeout.Std(),
			HandshakeTimeout: s.config.Session.HandshakeTimeout.Std(),
			MaxMessageSize:   s.config.Session.MaxMessageSize,
		}),
		wsnav.WithHistoryOptions(history.WithLogger(s.logger)),
		wsnav.WithSessionHook(func(session *wsnav.Session) {
			s.logger.Debug("session ready", "session_id", session.ID, "location", session.Store().Location())
		}),
	}
	if s.recorder != nil {
		opts = append(opts,
			wsnav.WithObserver(s.recorder),
			wsnav.WithHistoryOptions(history.WithObserver(s.recorder)),
		)
	}
	return opts
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Method(http.MethodGet, ClientPath, http.HandlerFunc(serveClient))
	r.Method(http.MethodHead, ClientPath, http.HandlerFunc(serveClient))
	r.Handle(WebSocketPath, s.ws)

	if s.config.Telemetry.Metrics {
		r.Handle(s.config.Telemetry.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
			ErrorLog: slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
		}))
	}

	r.Get("/*", s.serveShell)
	r.Head("/*", s.serveShell)
	return r
}

// serveShell answers every document request with the same shell. Routes
// are resolved by the session once the client connects, so unknown paths
// get the shell too and render the not-found page there.
func (s *Server) serveShell(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if err := app.Shell(s.config.Name, ClientPath).Render(r.Context(), w); err != nil {
		s.logger.Error("render shell", "path", r.URL.Path, "error", err)
	}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the number of open navigation sessions.
func (s *Server) Sessions() int {
	return s.ws.Sessions()
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every session, then stops the HTTP server within the
// configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout.Std())
	defer cancel()

	s.ws.Close()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}
	s.logger.Info("server shutdown complete")
	return nil
}
