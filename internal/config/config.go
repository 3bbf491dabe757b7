// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and LEADERBOARD_* env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"time"
)

// Author display identity strategies.
const (
	AuthorEmailLocalPart = "email_local_part"
	AuthorFullName       = "full_name"
)

// Source reclassification strategies.
const (
	SourceAlwaysAIME = "always_aime"
	SourceSentinel   = "sentinel"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Datasets the standings can be computed from.
const (
	DatasetAll      = "all"
	DatasetFinished = "finished"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`
	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// ProjectID identifies the annotation project to read.
	ProjectID string `koanf:"project_id" validate:"required"`
	// APIKey authenticates against the annotation platform.
	APIKey string `koanf:"api_key" validate:"required"`
	// KiliEndpoint is the GraphQL endpoint of the annotation platform.
	KiliEndpoint string `koanf:"kili_endpoint" validate:"required,url"`
	// PageSize bounds the number of records requested per GraphQL page.
	PageSize int `koanf:"page_size" validate:"min=1,max=500"`
	// RequestTimeoutMS is the per-request HTTP timeout.
	RequestTimeoutMS int `koanf:"request_timeout_ms" validate:"min=1"`

	// ExcludedAuthors are left out of attribution and duration accounting.
	ExcludedAuthors []string `koanf:"excluded_authors"`
	// AuthorStrategy picks how a contributor is named.
	AuthorStrategy string `koanf:"author_strategy" validate:"oneof=email_local_part full_name"`
	// SourceStrategy picks how the generic "problem" source is reclassified.
	SourceStrategy string `koanf:"source_strategy" validate:"oneof=always_aime sentinel"`
	// SentinelField is a dotted metadata path read by the sentinel strategy.
	SentinelField string `koanf:"sentinel_field" validate:"required_if=SourceStrategy sentinel"`
	// SentinelValue marks an AMC problem under the sentinel strategy.
	SentinelValue string `koanf:"sentinel_value" validate:"required_if=SourceStrategy sentinel"`
	// SourceWeights maps source categories to points.
	SourceWeights map[string]float64 `koanf:"source_weights"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit" validate:"min=1"`
	// LeaderboardDataset picks which dataset feeds /leaderboard and /rank: all or finished.
	LeaderboardDataset string `koanf:"leaderboard_dataset" validate:"oneof=all finished"`
	// Timezone is used for calendar-day bucketing ("today", daily series).
	Timezone string `koanf:"timezone" validate:"required"`

	// CacheBackend selects where fetched datasets are kept: memory or redis.
	CacheBackend string `koanf:"cache_backend" validate:"oneof=memory redis"`
	// RedisURL is required when CacheBackend is redis.
	RedisURL string `koanf:"redis_url" validate:"required_if=CacheBackend redis"`
	// CacheTTLSeconds expires cached datasets; 0 keeps them until refresh.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds" validate:"min=0"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		ProjectID:        "cm7dgibsd0fy801bgdiqs7xjc",
		KiliEndpoint:     "https://cloud.kili-technology.com/api/label/v2/graphql",
		PageSize:         100,
		RequestTimeoutMS: 30_000,
		ExcludedAuthors:  []string{"maxime.michel@kili-technology.com"},
		AuthorStrategy:   AuthorEmailLocalPart,
		SourceStrategy:   SourceAlwaysAIME,
		SentinelField:    "competition",
		SentinelValue:    "AMC",
		SourceWeights: map[string]float64{
			"AIME": 1.5,
			"AMC":  1.0,
		},
		MaxLeaderboardLimit: 100,
		LeaderboardDataset:  DatasetAll,
		Timezone:            "UTC",
		CacheBackend:        CacheMemory,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Location resolves Timezone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
