package commands

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/piwi3910/boardcut/internal/model"
	"github.com/piwi3910/boardcut/internal/project"
)

// Options holds the global flags. Flags left unset do not override the
// config file.
type Options struct {
	ConfigPath  string
	CatalogPath string
	RedisURL    string
	NoCache     bool
	LogLevel    string
	LogFormat   string
	TTL         time.Duration
	Timeout     time.Duration
	Parallel    bool
	Metrics     bool
}

// NewOptions returns options pointing at the default config locations.
func NewOptions() *Options {
	defaults := model.DefaultAppConfig()
	return &Options{
		ConfigPath:  project.DefaultConfigPath(),
		CatalogPath: project.DefaultCatalogPath(),
		LogLevel:    defaults.LogLevel,
		LogFormat:   defaults.LogFormat,
		TTL:         defaults.CacheTTL(),
		Timeout:     defaults.RequestTimeout(),
		Parallel:    defaults.Parallel,
	}
}

// AddFlags adds the global flags to fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ConfigPath, "config", o.ConfigPath, "Path to the config file")
	fs.StringVar(&o.CatalogPath, "catalog", o.CatalogPath, "Path to the material catalog file")
	fs.StringVar(&o.RedisURL, "redis-url", o.RedisURL, "Redis URL for the result cache (empty keeps results in process)")
	fs.BoolVar(&o.NoCache, "no-cache", o.NoCache, "Disable the result cache")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level: debug, info, warn or error")
	fs.StringVar(&o.LogFormat, "log-format", o.LogFormat, "Log format: text or json")
	fs.DurationVar(&o.TTL, "ttl", o.TTL, "How long computed results stay retrievable")
	fs.DurationVar(&o.Timeout, "timeout", o.Timeout, "Optimization timeout (0 for none)")
	fs.BoolVar(&o.Parallel, "parallel", o.Parallel, "Pack materials concurrently")
	fs.BoolVar(&o.Metrics, "metrics", o.Metrics, "Print collected metrics to stderr on exit")
}

// Apply overlays the flags the user set explicitly onto cfg.
func (o *Options) Apply(fs *pflag.FlagSet, cfg model.AppConfig) model.AppConfig {
	if fs.Changed("redis-url") {
		cfg.RedisURL = o.RedisURL
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = o.LogFormat
	}
	if fs.Changed("ttl") {
		cfg.CacheTTLSeconds = int(o.TTL / time.Second)
	}
	if fs.Changed("timeout") {
		cfg.RequestTimeoutSec = int(o.Timeout / time.Second)
	}
	if fs.Changed("parallel") {
		cfg.Parallel = o.Parallel
	}
	return cfg
}

// Validate checks the flags that the config does not cover.
func (o *Options) Validate() error {
	if o.ConfigPath == "" {
		return fmt.Errorf("config path cannot be empty")
	}
	if o.CatalogPath == "" {
		return fmt.Errorf("catalog path cannot be empty")
	}
	if o.TTL < 0 {
		return fmt.Errorf("ttl must not be negative, got %v", o.TTL)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %v", o.Timeout)
	}
	return nil
}
