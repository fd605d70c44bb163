package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/salesdash/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "salesdash.json"

	// DefaultPort is the default HTTP port.
	DefaultPort = 8080

	// DefaultHost is the default bind host.
	DefaultHost = "localhost"

	// DefaultAPIBaseURL is the remote CRM API used when none is configured.
	DefaultAPIBaseURL = "http://localhost:8000/api"
)

// candidates are the file names Resolve looks for, in order.
var candidates = []string{ConfigFileName, "salesdash.yaml", "salesdash.yml"}

// Session store kinds.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config represents the complete salesdash configuration.
type Config struct {
	// Server contains HTTP listener configuration.
	Server ServerConfig `json:"server" yaml:"server"`

	// API points at the remote CRM API.
	API APIConfig `json:"api" yaml:"api"`

	// Session contains credential session configuration.
	Session SessionConfig `json:"session" yaml:"session"`

	// Live contains live session (WebSocket) configuration.
	Live LiveConfig `json:"live" yaml:"live"`

	// Log contains logging configuration.
	Log LogConfig `json:"log" yaml:"log"`

	// Tracing contains OpenTelemetry exporter configuration.
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// Metrics contains Prometheus endpoint configuration.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	Host            string   `json:"host" yaml:"host"`
	Port            int      `json:"port" yaml:"port"`
	ReadTimeout     Duration `json:"readTimeout" yaml:"readTimeout"`
	WriteTimeout    Duration `json:"writeTimeout" yaml:"writeTimeout"`
	ShutdownTimeout Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`
}

// Addr returns the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// APIConfig points at the remote CRM API.
type APIConfig struct {
	// BaseURL is prefixed to every endpoint path.
	BaseURL string `json:"baseURL" yaml:"baseURL"`

	// Timeout bounds each API call.
	Timeout Duration `json:"timeout" yaml:"timeout"`
}

// SessionConfig contains credential session settings.
type SessionConfig struct {
	// Store is "memory" or "redis".
	Store string `json:"store" yaml:"store"`

	// CookieName overrides the session cookie name.
	CookieName string `json:"cookieName,omitempty" yaml:"cookieName,omitempty"`

	// SecureCookie marks the cookie Secure. Enable behind HTTPS.
	SecureCookie bool `json:"secureCookie" yaml:"secureCookie"`

	// IdleTimeout is how long an unused session stays cached in process.
	IdleTimeout Duration `json:"idleTimeout" yaml:"idleTimeout"`

	// Redis is used when Store is "redis".
	Redis RedisConfig `json:"redis" yaml:"redis"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db" yaml:"db"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// LiveConfig contains live session settings.
type LiveConfig struct {
	// SearchDelay is the debounce delay of list view search boxes.
	SearchDelay Duration `json:"searchDelay" yaml:"searchDelay"`

	// EventRate is the sustained events per second a browser may send.
	EventRate float64 `json:"eventRate" yaml:"eventRate"`

	// EventBurst is the largest burst of events accepted at once.
	EventBurst int `json:"eventBurst" yaml:"eventBurst"`

	// HeartbeatInterval is how often the server pings the browser.
	HeartbeatInterval Duration `json:"heartbeatInterval" yaml:"heartbeatInterval"`

	// AllowedOrigins lists extra origins allowed to open a live session.
	// The page's own origin is always allowed.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level" yaml:"level"`

	// Format is "json" or "text".
	Format string `json:"format" yaml:"format"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	Endpoint    string  `json:"endpoint" yaml:"endpoint"`
	Insecure    bool    `json:"insecure" yaml:"insecure"`
	SampleRate  float64 `json:"sampleRate" yaml:"sampleRate"`
	ServiceName string  `json:"serviceName" yaml:"serviceName"`
}

// MetricsConfig contains Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		API: APIConfig{
			BaseURL: DefaultAPIBaseURL,
			Timeout: Duration(10 * time.Second),
		},
		Session: SessionConfig{
			Store:       StoreMemory,
			IdleTimeout: Duration(30 * time.Minute),
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "salesdash:session:",
			},
		},
		Live: LiveConfig{
			SearchDelay:       Duration(900 * time.Millisecond),
			EventRate:         20,
			EventBurst:        40,
			HeartbeatInterval: Duration(30 * time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: TracingConfig{
			Endpoint:    "localhost:4318",
			Insecure:    true,
			SampleRate:  1,
			ServiceName: "salesdash",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Resolve builds the effective configuration: defaults, then the file at
// path (or the first salesdash.{json,yaml,yml} in the working directory when
// path is empty), then SALESDASH_* overrides read through lookup. The result
// is validated.
func Resolve(path string, lookup func(string) (string, bool)) (*Config, error) {
	var cfg *Config
	switch {
	case path != "":
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		cfg = New()
		for _, name := range candidates {
			if _, err := os.Stat(name); err == nil {
				loaded, err := LoadFile(name)
				if err != nil {
					return nil, err
				}
				cfg = loaded
				break
			}
		}
	}

	if lookup != nil {
		if err := cfg.ApplyEnv(lookup); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads salesdash.json from the specified directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from path. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON. Fields the file omits keep their
// defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("E101").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E101").
			WithDetail(fmt.Sprintf("Failed to parse %s: %v", filepath.Base(path), err)).
			WithSuggestion("Check that the file is valid " + formatName(path))
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path, as YAML or JSON by extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E101").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("E101").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in values a file explicitly zeroed.
func (c *Config) applyDefaults() {
	def := New()
	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = def.API.Timeout
	}
	if c.Session.Store == "" {
		c.Session.Store = def.Session.Store
	}
	if c.Live.SearchDelay == 0 {
		c.Live.SearchDelay = def.Live.SearchDelay
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = def.Tracing.ServiceName
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = def.Metrics.Path
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(detail string) error {
		return errors.New("E102").WithDetail(detail)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port must be between 1 and 65535")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return invalid("api.baseURL must be an absolute http(s) URL, got " + strconv.Quote(c.API.BaseURL))
	}
	switch c.Session.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Session.Redis.Addr == "" {
			return invalid("session.redis.addr is required when session.store is redis")
		}
	default:
		return invalid("session.store must be memory or redis, got " + strconv.Quote(c.Session.Store))
	}
	if c.Live.SearchDelay < 0 {
		return invalid("live.searchDelay must not be negative")
	}
	if c.Live.EventRate < 0 || c.Live.EventBurst < 0 {
		return invalid("live.eventRate and live.eventBurst must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return invalid(err.Error())
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log.format must be json or text, got " + strconv.Quote(c.Log.Format))
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return invalid("tracing.endpoint is required when tracing is enabled")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return invalid("tracing.sampleRate must be between 0 and 1")
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path must start with /")
	}
	return nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range candidates {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level %q is not one of debug, info, warn, error", s)
	}
	return level, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func formatName(path string) string {
	if isYAML(path) {
		return "YAML"
	}
	return "JSON"
}
