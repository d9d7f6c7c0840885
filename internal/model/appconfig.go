package model

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// AppConfig holds application-wide settings: where the result cache lives,
// how long results are kept and the defaults applied to new requests.
type AppConfig struct {
	// Result cache
	RedisURL         string `json:"redis_url"`          // empty = in-process cache
	CacheTTLSeconds  int    `json:"cache_ttl_seconds"`  // TTL attached to every stored result
	RecentIndexLimit int    `json:"recent_index_limit"` // Max hashes kept in the recency index

	// Logging
	LogLevel  string `json:"log_level"`  // debug, info, warn, error
	LogFormat string `json:"log_format"` // text or json

	// Defaults applied to requests that leave them unset
	DefaultKerf       float64           `json:"default_kerf"`
	DefaultTrims      CuttingParameters `json:"default_trims"` // Kerf field ignored
	DefaultSplitRule  SplitRule         `json:"default_split_rule"`
	DefaultMaxSheets  int               `json:"default_max_sheets"`
	Parallel          bool              `json:"parallel"` // Pack materials concurrently
	RequestTimeoutSec int               `json:"request_timeout_seconds"`
}

// DefaultCacheTTL is how long a computed result stays retrievable by hash.
const DefaultCacheTTL = 72 * time.Hour

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		RedisURL:          "",
		CacheTTLSeconds:   int(DefaultCacheTTL / time.Second),
		RecentIndexLimit:  1000,
		LogLevel:          "info",
		LogFormat:         "text",
		DefaultKerf:       5.0,
		DefaultSplitRule:  SplitShorterAxisFirst,
		DefaultMaxSheets:  DefaultMaxSheets,
		Parallel:          true,
		RequestTimeoutSec: 30,
	}
}

// CacheTTL returns the configured TTL as a duration.
func (c AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RequestTimeout returns the overall optimization timeout; zero means none.
func (c AppConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// Validate reports every invalid field at once.
func (c AppConfig) Validate() error {
	var err error
	if c.CacheTTLSeconds <= 0 {
		err = multierr.Append(err, fmt.Errorf("cache_ttl_seconds must be positive, got %d", c.CacheTTLSeconds))
	}
	if c.RecentIndexLimit <= 0 {
		err = multierr.Append(err, fmt.Errorf("recent_index_limit must be positive, got %d", c.RecentIndexLimit))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		err = multierr.Append(err, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}
	if _, perr := ParseSplitRule(string(c.DefaultSplitRule)); perr != nil {
		err = multierr.Append(err, perr)
	}
	if c.DefaultKerf < 0 {
		err = multierr.Append(err, fmt.Errorf("default_kerf must not be negative"))
	}
	if c.DefaultMaxSheets < 0 {
		err = multierr.Append(err, fmt.Errorf("default_max_sheets must not be negative"))
	}
	return err
}

// ApplyToRequest fills the fields a request left unset with the configured defaults.
// The kerf is only taken from the config when the request has no parameters at all.
func (c AppConfig) ApplyToRequest(r *Request) {
	if r.Parameters == (CuttingParameters{}) {
		r.Parameters = c.DefaultTrims
		r.Parameters.Kerf = c.DefaultKerf
	}
	if r.SplitRule == "" {
		r.SplitRule = c.DefaultSplitRule
	}
	if r.MaxSheets <= 0 {
		r.MaxSheets = c.DefaultMaxSheets
	}
}
