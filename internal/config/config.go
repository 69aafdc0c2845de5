// Package config defines the geodash service configuration and how it is loaded.
//
// Conventions:
//   - New(ctx) returns a Config populated with defaults.
//   - Load(ctx) layers a .env file, an optional YAML file and GEODASH_* env vars on top.
//   - Keys are flat snake_case so every field can be set from the environment.
package config

import (
	"context"
	"runtime"
)

// Score table sources.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Percentage-change modes.
const (
	PctChangeHistory = "history"
	PctChangeFixed   = "fixed"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`
	// CORSAllowedOrigins lists origins allowed to call the API. "*" allows any.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// ScoreTableSource selects where baseline scores come from: csv or postgres.
	ScoreTableSource string `koanf:"score_table_source"`
	// ScoreTableURI locates the CSV artifact: a local path, s3://bucket/key or gs://bucket/key.
	ScoreTableURI string `koanf:"score_table_uri"`

	// ModelURI locates a linear model artifact (same URI schemes as ScoreTableURI).
	ModelURI string `koanf:"model_uri"`
	// ModelURL is the base URL of a remote predictor. Takes precedence over ModelURI.
	ModelURL string `koanf:"model_url"`
	// ModelTimeoutMS bounds a single remote prediction.
	ModelTimeoutMS int `koanf:"model_timeout_ms"`

	// PctChangeMode is history (price-history aware) or fixed (constant 0.05).
	PctChangeMode string `koanf:"pct_change_mode"`
	// AmenityWeights replaces the built-in amenity weight table when non-empty.
	AmenityWeights map[string]float64 `koanf:"amenity_weights"`

	// PostgresDSN enables the Postgres score source and forecast recording.
	PostgresDSN string `koanf:"postgres_dsn"`
	// MigrateOnStart applies embedded schema migrations at startup.
	MigrateOnStart bool `koanf:"migrate_on_start"`
	// RecordForecasts persists every computed forecast asynchronously.
	RecordForecasts bool `koanf:"record_forecasts"`

	// RedisAddr enables the forecast cache when set.
	RedisAddr       string `koanf:"redis_addr"`
	RedisPassword   string `koanf:"redis_password"`
	RedisDB         int    `koanf:"redis_db"`
	CacheTTLSeconds int    `koanf:"cache_ttl_seconds"`

	// OverpassURL enables POST /amenities when set.
	OverpassURL       string `koanf:"overpass_url"`
	OverpassTimeoutMS int    `koanf:"overpass_timeout_ms"`

	// RecordQueueSize bounds the in-memory record queue.
	RecordQueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of recording workers.
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize sets the size of the record fingerprint cache.
	DedupeSize int `koanf:"dedupe_size"`

	// S3Region and S3Endpoint configure s3:// artifact access.
	S3Region   string `koanf:"s3_region"`
	S3Endpoint string `koanf:"s3_endpoint"`
}

// New creates a Config populated with defaults. The context is reserved for
// future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":8000",
		CORSAllowedOrigins: []string{"*"},
		ScoreTableSource:   SourceCSV,
		ScoreTableURI:      "weighted.csv",
		ModelTimeoutMS:     2_000,
		PctChangeMode:      PctChangeHistory,
		CacheTTLSeconds:    3_600,
		OverpassTimeoutMS:  25_000,
		RecordQueueSize:    10_000,
		WorkerCount:        runtime.NumCPU(),
		DedupeSize:         100_000,
		S3Region:           "us-east-1",
	}
}
