// Package telemetry records navigation metrics with Prometheus and traces
// with OpenTelemetry.
//
// A *Recorder implements history.Observer, dispatch.Observer and
// wsnav.Observer, so one value is passed to all three:
//
//	rec := telemetry.New(telemetry.WithRegistry(reg))
//	store := history.New(backend, history.WithObserver(rec))
//	routes := app.Routes.WithObserver(rec)
//
// Metrics collected:
//   - waypoint_navigations_total: navigations by kind and status
//   - waypoint_notify_duration_seconds: listener notification rounds by kind
//   - waypoint_listeners_notified: listeners called per round
//   - waypoint_route_parses_total: dispatch results by route tag
//   - waypoint_route_parse_duration_seconds: dispatch latency
//   - waypoint_active_sessions: open thin-client sessions
//   - waypoint_frames_total: WebSocket frames by direction and type
//   - waypoint_websocket_errors_total: WebSocket errors by type
package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/waypoint/pkg/history"
)

const defaultTracerName = "waypoint"

// Config configures a Recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "waypoint").
	Namespace string

	// ConstLabels are added to every metric.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// TracerName names the tracer (default: "waypoint").
	TracerName string

	// TracerProvider supplies the tracer. Default: the global provider.
	TracerProvider trace.TracerProvider
}

// Option configures a Recorder.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.TracerProvider = tp
	}
}

func defaultConfig() Config {
	return Config{
		Namespace:  "waypoint",
		Buckets:    prometheus.DefBuckets,
		Registry:   prometheus.DefaultRegisterer,
		TracerName: defaultTracerName,
	}
}

// Recorder holds the collectors and the tracer.
type Recorder struct {
	navigations    *prometheus.CounterVec
	notifyDuration *prometheus.HistogramVec
	notified       prometheus.Histogram
	parses         *prometheus.CounterVec
	parseDuration  prometheus.Histogram
	sessions       prometheus.Gauge
	frames         *prometheus.CounterVec
	wsErrors       *prometheus.CounterVec

	tracer trace.Tracer
}

// New registers the collectors with the configured registry. Registering
// twice on one registry panics, as with promauto.
func New(opts ...Option) *Recorder {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Buckets == nil {
		config.Buckets = prometheus.DefBuckets
	}

	factory := promauto.With(config.Registry)
	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Recorder{
		navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "navigations_total",
			Help:        "Total number of history navigations",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),

		notifyDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "notify_duration_seconds",
			Help:        "Duration of history listener notification rounds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		notified: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "listeners_notified",
			Help:        "Listeners called per notification round",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),

		parses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "route_parses_total",
			Help:        "Total number of route dispatch parses by matched tag",
			ConstLabels: config.ConstLabels,
		}, []string{"route"}),

		parseDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "route_parse_duration_seconds",
			Help:        "Route dispatch parse duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "active_sessions",
			Help:        "Number of open thin-client sessions",
			ConstLabels: config.ConstLabels,
		}),

		frames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "frames_total",
			Help:        "WebSocket frames by direction and type",
			ConstLabels: config.ConstLabels,
		}, []string{"direction", "type"}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		tracer: tp.Tracer(config.TracerName),
	}
}

// ObserveNavigation implements history.Observer.
func (r *Recorder) ObserveNavigation(kind history.Kind, url string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.navigations.WithLabelValues(kind.String(), status).Inc()

	_, span := r.tracer.Start(context.Background(), "waypoint.navigate",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("waypoint.kind", kind.String()),
			attribute.String("waypoint.url", url),
		),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// ObserveNotify implements history.Observer.
func (r *Recorder) ObserveNotify(kind history.Kind, listeners int, elapsed time.Duration) {
	r.notifyDuration.WithLabelValues(kind.String()).Observe(elapsed.Seconds())
	r.notified.Observe(float64(listeners))
}

// ObserveParse implements dispatch.Observer. Unmatched paths are counted
// under the route label "none".
func (r *Recorder) ObserveParse(tag string, matched bool, elapsed time.Duration) {
	if !matched {
		tag = "none"
	}
	r.parses.WithLabelValues(tag).Inc()
	r.parseDuration.Observe(elapsed.Seconds())

	end := time.Now()
	_, span := r.tracer.Start(context.Background(), "waypoint.parse",
		trace.WithTimestamp(end.Add(-elapsed)),
		trace.WithAttributes(
			attribute.String("waypoint.route", tag),
			attribute.Bool("waypoint.matched", matched),
		),
	)
	span.End(trace.WithTimestamp(end))
}

// SessionOpened implements wsnav.Observer.
func (r *Recorder) SessionOpened() { r.sessions.Inc() }

// SessionClosed implements wsnav.Observer.
func (r *Recorder) SessionClosed() { r.sessions.Dec() }

// FrameReceived implements wsnav.Observer.
func (r *Recorder) FrameReceived(frameType string) {
	r.frames.WithLabelValues("in", frameType).Inc()
}

// FrameSent implements wsnav.Observer.
func (r *Recorder) FrameSent(frameType string) {
	r.frames.WithLabelValues("out", frameType).Inc()
}

// WebSocketError implements wsnav.Observer.
func (r *Recorder) WebSocketError(errorType string) {
	r.wsErrors.WithLabelValues(errorType).Inc()
}
