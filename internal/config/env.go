package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/salesdash/internal/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SALESDASH_"

type envBinding struct {
	name  string
	apply func(c *Config, v string) error
}

// envBindings lists the supported overrides without the prefix.
var envBindings = []envBinding{
	{"HOST", func(c *Config, v string) error { c.Server.Host = v; return nil }},
	{"PORT", intVar(func(c *Config) *int { return &c.Server.Port })},
	{"API_URL", func(c *Config, v string) error { c.API.BaseURL = v; return nil }},
	{"API_TIMEOUT", durationVar(func(c *Config) *Duration { return &c.API.Timeout })},
	{"SESSION_STORE", func(c *Config, v string) error { c.Session.Store = strings.ToLower(v); return nil }},
	{"COOKIE_SECURE", boolVar(func(c *Config) *bool { return &c.Session.SecureCookie })},
	{"REDIS_ADDR", func(c *Config, v string) error { c.Session.Redis.Addr = v; return nil }},
	{"REDIS_PASSWORD", func(c *Config, v string) error { c.Session.Redis.Password = v; return nil }},
	{"REDIS_DB", intVar(func(c *Config) *int { return &c.Session.Redis.DB })},
	{"SEARCH_DELAY", durationVar(func(c *Config) *Duration { return &c.Live.SearchDelay })},
	{"LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = strings.ToLower(v); return nil }},
	{"LOG_FORMAT", func(c *Config, v string) error { c.Log.Format = strings.ToLower(v); return nil }},
	{"OTLP_ENDPOINT", func(c *Config, v string) error {
		c.Tracing.Endpoint = v
		c.Tracing.Enabled = v != ""
		return nil
	}},
	{"TRACE_SAMPLE_RATE", func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.Tracing.SampleRate = f
		return nil
	}},
	{"METRICS", boolVar(func(c *Config) *bool { return &c.Metrics.Enabled })},
}

// EnvNames returns the full names of all supported environment overrides.
func EnvNames() []string {
	names := make([]string, len(envBindings))
	for i, b := range envBindings {
		names[i] = EnvPrefix + b.name
	}
	return names
}

// ApplyEnv overrides fields from SALESDASH_* variables read through lookup.
// Unset variables leave the field alone; a set but empty variable clears
// string fields.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		v, ok := lookup(EnvPrefix + b.name)
		if !ok {
			continue
		}
		if err := b.apply(c, strings.TrimSpace(v)); err != nil {
			return errors.New("E102").
				WithDetail(EnvPrefix + b.name + ": " + err.Error())
		}
	}
	return nil
}

func intVar(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolVar(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func durationVar(field func(*Config) *Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = Duration(d)
		return nil
	}
}
