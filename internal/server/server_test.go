package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientdist "github.com/vango-dev/waypoint/client/dist"
	"github.com/vango-dev/waypoint/internal/config"
	"github.com/vango-dev/waypoint/pkg/telemetry"
	"github.com/vango-dev/waypoint/pkg/wsnav"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T, cfg *config.Config, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	if cfg == nil {
		cfg = config.New()
	}
	s := New(cfg, append([]Option{WithLogger(quiet)}, opts...)...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string, header http.Header) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, body := get(t, ts.URL+HealthPath, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", body)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestShell(t *testing.T) {
	_, ts := newTestServer(t, nil)

	// Every path gets the shell; the session decides what renders.
	for _, path := range []string{"/", "/search/cats", "/posts/2022/type-safe-routing", "/abcdef", "/posts/year/slug"} {
		t.Run(path, func(t *testing.T) {
			resp, body := get(t, ts.URL+path, nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
			assert.Contains(t, body, "<title>waypoint</title>")
			assert.Contains(t, body, `<script src="`+ClientPath+`" defer></script>`)
			assert.Contains(t, body, "data-waypoint-root")
		})
	}
}

func TestShellHead(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, err := http.Head(ts.URL + "/search/cats")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body)
}

func TestClientScript(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, body := get(t, ts.URL+ClientPath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(clientdist.WaypointJS), body)
	assert.Equal(t, "application/javascript; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	resp, body = get(t, ts.URL+ClientPath, http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	assert.Empty(t, body)

	resp, _ = get(t, ts.URL+ClientPath, http.Header{"If-None-Match": {`"stale"`}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestETagMatches(t *testing.T) {
	assert.True(t, etagMatches(`"abc"`, `"abc"`))
	assert.True(t, etagMatches(`"x", W/"abc"`, `"abc"`))
	assert.True(t, etagMatches(`*`, `"abc"`))
	assert.False(t, etagMatches(`"abd"`, `"abc"`))
	assert.False(t, etagMatches("", `"abc"`))
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, ts *httptest.Server) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + WebSocketPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(f wsnav.Frame) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(f))
}

func (c *wsClient) read() wsnav.Frame {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := c.conn.ReadMessage()
	require.NoError(c.t, err)
	var f wsnav.Frame
	require.NoError(c.t, json.Unmarshal(msg, &f))
	return f
}

func TestNavigationSession(t *testing.T) {
	s, ts := newTestServer(t, nil)
	c := dial(t, ts)

	c.send(wsnav.Frame{T: wsnav.FrameHello, URL: ts.URL + "/"})
	home := c.read()
	require.Equal(t, wsnav.FrameRender, home.T)
	assert.Contains(t, home.HTML, `href="/search/dogs%20and%20cats"`)
	assert.Equal(t, 1, s.Sessions())

	c.send(wsnav.Frame{T: wsnav.FrameClick, Href: "/search/dogs%20and%20cats"})
	assert.Equal(t, wsnav.Frame{T: wsnav.FramePush, URL: "/search/dogs%20and%20cats"}, c.read())
	search := c.read()
	require.Equal(t, wsnav.FrameRender, search.T)
	assert.Contains(t, search.HTML, "dogs and cats")

	c.send(wsnav.Frame{T: wsnav.FrameClick, Href: "/abcdef"})
	c.read()
	notFound := c.read()
	assert.Contains(t, notFound.HTML, "Not found")
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := telemetry.New(telemetry.WithRegistry(reg))
	_, ts := newTestServer(t, nil, WithTelemetry(rec, reg))

	c := dial(t, ts)
	c.send(wsnav.Frame{T: wsnav.FrameHello, URL: "/search/cats"})
	c.read()

	resp, body := get(t, ts.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `waypoint_route_parses_total{route="Search"} 1`)
	assert.Contains(t, body, "waypoint_active_sessions 1")
	assert.Contains(t, body, `waypoint_frames_total{direction="in",type="hello"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	cfg := config.New()
	cfg.Telemetry.Metrics = false
	_, ts := newTestServer(t, cfg)

	// Falls through to the shell.
	resp, body := get(t, ts.URL+"/metrics", nil)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.NotContains(t, body, "waypoint_route_parses_total")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	cfg := config.New()
	cfg.Server.ShutdownTimeout = config.Duration(2 * time.Second)
	s := New(cfg, WithLogger(quiet))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "ws://" + ln.Addr().String() + WebSocketPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.WriteJSON(wsnav.Frame{T: wsnav.FrameHello, URL: "/"}))
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	// The session is closed along with the server.
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
