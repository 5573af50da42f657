// Package config loads and validates analyzer settings from flags, the
// environment (CDR_*) and an optional config file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys shared by viper, cobra flags and the CDR_* environment.
const (
	KeyFormat         = "format"
	KeyTop            = "top"
	KeyShortThreshold = "short-threshold"
	KeyShortLimit     = "short-limit"
	KeyTimezone       = "timezone"
	KeyParallelism    = "parallelism"
	KeyMetricsAddr    = "metrics-addr"
	KeyPushURL        = "push-url"
	KeyWait           = "wait"
	KeyLogLevel       = "log-level"
	KeyLogConsole     = "log-console"
	KeyConfigFile     = "config"
)

// EnvPrefix is prepended to every environment override, e.g. CDR_TOP.
const EnvPrefix = "CDR"

// Config holds the settings of one analyzer run.
type Config struct {
	// Format is the output rendering: text, json or csv.
	Format string `mapstructure:"format"`
	// Top is the size of the caller and destination rankings.
	Top int `mapstructure:"top"`
	// ShortThreshold is the conversation time in seconds under which a call is short.
	ShortThreshold int `mapstructure:"short-threshold"`
	// ShortLimit caps how many short calls are listed.
	ShortLimit int `mapstructure:"short-limit"`
	// Timezone is the IANA zone day and hour buckets are computed in; empty keeps record times.
	Timezone string `mapstructure:"timezone"`
	// Parallelism bounds how many files are analyzed at once.
	Parallelism int `mapstructure:"parallelism"`
	// MetricsAddr exposes Prometheus metrics when set (e.g. :9090).
	MetricsAddr string `mapstructure:"metrics-addr"`
	// PushURL pushes metrics to a Pushgateway when set.
	PushURL string `mapstructure:"push-url"`
	// Wait keeps the process alive after the run so metrics can be scraped.
	Wait bool `mapstructure:"wait"`
	// LogLevel is a zerolog level name.
	LogLevel string `mapstructure:"log-level"`
	// LogConsole switches logs from JSON to human-readable output.
	LogConsole bool `mapstructure:"log-console"`

	location *time.Location
}

var validFormats = map[string]bool{"text": true, "json": true, "csv": true}

// New returns a viper instance with defaults and CDR_* environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyFormat, "text")
	v.SetDefault(KeyTop, 10)
	v.SetDefault(KeyShortThreshold, 5)
	v.SetDefault(KeyShortLimit, 10)
	v.SetDefault(KeyTimezone, "")
	v.SetDefault(KeyParallelism, 4)
	v.SetDefault(KeyMetricsAddr, "")
	v.SetDefault(KeyPushURL, "")
	v.SetDefault(KeyWait, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogConsole, false)
	return v
}

// Load reads the config file named by the "config" key, if any, then builds
// and validates Config. Flags and env vars override file values.
func Load(v *viper.Viper) (*Config, error) {
	if path := v.GetString(KeyConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if !validFormats[cfg.Format] {
		return nil, fmt.Errorf("config: format must be one of: text, json, csv (got: %s)", cfg.Format)
	}
	if cfg.Top < 0 {
		return nil, errors.New("config: top must not be negative")
	}
	if cfg.ShortThreshold < 0 {
		return nil, errors.New("config: short-threshold must not be negative")
	}
	if cfg.ShortLimit < 0 {
		return nil, errors.New("config: short-limit must not be negative")
	}
	if cfg.Parallelism < 1 {
		return nil, errors.New("config: parallelism must be at least 1")
	}
	if cfg.Wait && cfg.MetricsAddr == "" {
		return nil, errors.New("config: wait requires metrics-addr")
	}

	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("config: timezone: %w", err)
		}
		cfg.location = loc
	}

	return &cfg, nil
}

// Location returns the zone for day and hour buckets, or nil to keep each
// record's own zone.
func (c *Config) Location() *time.Location {
	return c.location
}
