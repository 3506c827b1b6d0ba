package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vango-dev/waypoint/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "waypoint.json"

	// EnvFileName is the optional dotenv file read by FromEnvironment.
	EnvFileName = ".env"

	// DefaultAddr is the default listen address.
	DefaultAddr = "localhost:3000"

	// DefaultMetricsPath is the default metrics endpoint.
	DefaultMetricsPath = "/metrics"
)

// Duration is a time.Duration written as a string ("10s") in JSON.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler. Plain numbers are seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var secs float64
		if err := json.Unmarshal(data, &secs); err != nil {
			return fmt.Errorf("duration must be a string or a number of seconds: %s", data)
		}
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config represents the complete waypoint.json configuration.
type Config struct {
	// Name is the application name, used as the page title.
	Name string `json:"name,omitempty"`

	// Server contains HTTP server settings.
	Server ServerConfig `json:"server"`

	// Session contains WebSocket session limits.
	Session SessionConfig `json:"session"`

	// Log contains logging settings.
	Log LogConfig `json:"log"`

	// Telemetry contains metrics and tracing settings.
	Telemetry TelemetryConfig `json:"telemetry"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address (host:port).
	Addr string `json:"addr,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `json:"shutdownTimeout,omitempty"`
}

// SessionConfig contains WebSocket session limits.
type SessionConfig struct {
	ReadTimeout      Duration `json:"readTimeout,omitempty"`
	WriteTimeout     Duration `json:"writeTimeout,omitempty"`
	HandshakeTimeout Duration `json:"handshakeTimeout,omitempty"`

	// MaxMessageSize limits incoming frames in bytes.
	MaxMessageSize int64 `json:"maxMessageSize,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// TelemetryConfig contains metrics and tracing settings.
type TelemetryConfig struct {
	// Metrics enables the Prometheus endpoint.
	Metrics bool `json:"metrics"`

	// MetricsPath is the endpoint path.
	MetricsPath string `json:"metricsPath,omitempty"`

	// TracerName names the OpenTelemetry tracer.
	TracerName string `json:"tracerName,omitempty"`
}

// New returns a configuration with defaults applied.
func New() *Config {
	cfg := &Config{Telemetry: TelemetryConfig{Metrics: true}}
	cfg.applyDefaults()
	return cfg
}

// Load reads waypoint.json from dir. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	cfg, err := LoadFile(path)
	if err != nil {
		if errors.HasCode(err, errors.CodeConfigRead) && errors.Is(err, os.ErrNotExist) {
			cfg = New()
			cfg.configPath = path
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the configuration at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeConfigRead).
			WithDetail("reading %s", path).
			Wrap(err)
	}

	cfg := &Config{Telemetry: TelemetryConfig{Metrics: true}}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetail("failed to parse %s: %s", filepath.Base(path), err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// FromEnvironment loads dir's waypoint.json, then the .env file in dir if
// present, then applies the environment, and validates the result.
// Variables already set in the process are not overridden by .env.
func FromEnvironment(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if err != nil {
		return nil, err
	}

	envFile := filepath.Join(dir, EnvFileName)
	if _, statErr := os.Stat(envFile); statErr == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.New(errors.CodeConfigRead).WithDetail("reading %s", envFile).Wrap(err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the variables lookup reports.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("WAYPOINT_ADDR"); ok && v != "" {
		c.Server.Addr = v
	} else if port, ok := lookup("PORT"); ok && port != "" {
		c.Server.Addr = ":" + port
	}
	if v, ok := lookup("WAYPOINT_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup("WAYPOINT_LOG_FORMAT"); ok && v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	if v, ok := lookup("WAYPOINT_METRICS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("WAYPOINT_METRICS", v, err)
		}
		c.Telemetry.Metrics = b
	}
	if v, ok := lookup("WAYPOINT_METRICS_PATH"); ok && v != "" {
		c.Telemetry.MetricsPath = v
	}
	if v, ok := lookup("WAYPOINT_TRACER"); ok && v != "" {
		c.Telemetry.TracerName = v
	}
	if v, ok := lookup("WAYPOINT_MAX_MESSAGE_SIZE"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return envError("WAYPOINT_MAX_MESSAGE_SIZE", v, err)
		}
		c.Session.MaxMessageSize = n
	}

	durations := []struct {
		name string
		dst  *Duration
	}{
		{"WAYPOINT_READ_TIMEOUT", &c.Session.ReadTimeout},
		{"WAYPOINT_WRITE_TIMEOUT", &c.Session.WriteTimeout},
		{"WAYPOINT_HANDSHAKE_TIMEOUT", &c.Session.HandshakeTimeout},
		{"WAYPOINT_SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout},
	}
	for _, d := range durations {
		v, ok := lookup(d.name)
		if !ok || v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return envError(d.name, v, err)
		}
		*d.dst = Duration(parsed)
	}
	return nil
}

func envError(name, value string, err error) error {
	return errors.New(errors.CodeInvalidConfig).
		WithDetail("%s=%q", name, value).
		Wrap(err)
}

// Save writes the configuration back to where it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New(errors.CodeInvalidConfig).WithDetail("configuration has no path")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(errors.CodeConfigRead).WithDetail("writing %s", path).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path the configuration was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "waypoint"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if c.Session.ReadTimeout == 0 {
		c.Session.ReadTimeout = Duration(2 * time.Minute)
	}
	if c.Session.WriteTimeout == 0 {
		c.Session.WriteTimeout = Duration(10 * time.Second)
	}
	if c.Session.HandshakeTimeout == 0 {
		c.Session.HandshakeTimeout = Duration(10 * time.Second)
	}
	if c.Session.MaxMessageSize == 0 {
		c.Session.MaxMessageSize = 16 * 1024
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Telemetry.MetricsPath == "" {
		c.Telemetry.MetricsPath = DefaultMetricsPath
	}
	if c.Telemetry.TracerName == "" {
		c.Telemetry.TracerName = "waypoint"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, port, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return invalid("server.addr %q: %v", c.Server.Addr, err)
	} else if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return invalid("server.addr %q: port must be between 0 and 65535", c.Server.Addr)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return invalid("log.level: %v", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format %q: must be text or json", c.Log.Format)
	}
	for name, d := range map[string]Duration{
		"session.readTimeout":      c.Session.ReadTimeout,
		"session.writeTimeout":     c.Session.WriteTimeout,
		"session.handshakeTimeout": c.Session.HandshakeTimeout,
		"server.shutdownTimeout":   c.Server.ShutdownTimeout,
	} {
		if d <= 0 {
			return invalid("%s must be positive", name)
		}
	}
	if c.Session.MaxMessageSize <= 0 {
		return invalid("session.maxMessageSize must be positive")
	}
	if !strings.HasPrefix(c.Telemetry.MetricsPath, "/") {
		return invalid("telemetry.metricsPath %q must start with /", c.Telemetry.MetricsPath)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.CodeInvalidConfig).WithDetail(format, args...)
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	l, _ := parseLevel(c.Log.Level)
	return l
}

// Logger builds a logger writing to w in the configured format and level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, err
	}
	return l, nil
}
