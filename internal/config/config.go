package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ngclient/ngutils/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "ngutils.json"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "ngutils"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "ngutils"
)

// Snapshot backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendS3     = "s3"
)

// Config represents the complete ngutils.json configuration.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `json:"server,omitempty"`

	// Log contains logging settings.
	Log LogConfig `json:"log,omitempty"`

	// Snapshot selects where client models are persisted between sessions.
	Snapshot SnapshotConfig `json:"snapshot,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Page contains defaults for rendered pages.
	Page PageConfig `json:"page,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty"`

	// ReadTimeout bounds reading a request (e.g., "10s").
	ReadTimeout string `json:"readTimeout,omitempty"`

	// WriteTimeout bounds writing a response.
	WriteTimeout string `json:"writeTimeout,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout string `json:"shutdownTimeout,omitempty"`

	// AllowedOrigins lists origins accepted by the watch WebSocket.
	// Empty means same-origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// SnapshotConfig contains snapshot persistence settings.
type SnapshotConfig struct {
	// Backend is "none", "memory" or "s3".
	Backend string `json:"backend,omitempty"`

	// S3 configures the S3 backend.
	S3 S3Config `json:"s3,omitempty"`
}

// S3Config configures the S3 snapshot backend.
type S3Config struct {
	Bucket       string `json:"bucket,omitempty"`
	Prefix       string `json:"prefix,omitempty"`
	Region       string `json:"region,omitempty"`
	Endpoint     string `json:"endpoint,omitempty"`
	UsePathStyle bool   `json:"usePathStyle,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty"`
	TracerName string `json:"tracerName,omitempty"`
}

// PageConfig contains defaults for rendered pages.
type PageConfig struct {
	Title string `json:"title,omitempty"`
	Lang  string `json:"lang,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{
		Metrics: MetricsConfig{Enabled: true},
		Tracing: TracingConfig{Enabled: true},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for ngutils.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("N030").
				WithDetail("No " + ConfigFileName + " found at " + path).
				WithSuggestion("Create the file or omit --config to run with defaults")
		}
		return nil, errors.New("N031").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("N031").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("N031").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("N031").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "10s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "15s"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Snapshot.Backend == "" {
		c.Snapshot.Backend = BackendNone
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}

	if c.Page.Lang == "" {
		c.Page.Lang = "en"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	for name, v := range map[string]string{
		"server.readTimeout":     c.Server.ReadTimeout,
		"server.writeTimeout":    c.Server.WriteTimeout,
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return errors.New("N031").WithDetailf("%s: %v", name, err)
		}
	}

	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New("N031").
			WithDetailf("log.level %q", c.Log.Level).
			WithSuggestion("Use debug, info, warn or error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("N031").WithDetailf("log.format %q", c.Log.Format)
	}

	switch c.Snapshot.Backend {
	case BackendNone, BackendMemory:
	case BackendS3:
		if c.Snapshot.S3.Bucket == "" {
			return errors.New("N031").
				WithDetail("snapshot.s3.bucket is required for the s3 backend").
				WithSuggestion("Set NGUTILS_S3_BUCKET or snapshot.s3.bucket")
		}
	default:
		return errors.New("N031").WithDetailf("snapshot.backend %q", c.Snapshot.Backend)
	}
	return nil
}

// ReadTimeout returns the parsed read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return mustDuration(c.Server.ReadTimeout)
}

// WriteTimeout returns the parsed write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return mustDuration(c.Server.WriteTimeout)
}

// ShutdownTimeout returns the parsed shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	return mustDuration(c.Server.ShutdownTimeout)
}

// LogLevel returns the slog level for Log.Level.
func (c *Config) LogLevel() slog.Level {
	lvl, _ := parseLevel(c.Log.Level)
	return lvl
}

// mustDuration parses a validated duration; invalid input yields zero.
func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
