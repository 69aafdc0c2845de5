package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "GEODASH_"
	envConfig  = "GEODASH_CONFIG"
	envDotFile = "GEODASH_ENV_FILE"
)

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if GEODASH_CONFIG is set
//  3. env (prefix GEODASH_), including values from a .env file
func Load(ctx context.Context) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	base := New(ctx)
	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// GEODASH_SCORE_TABLE_URI -> score_table_uri
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv reads GEODASH_ENV_FILE (or ./.env when present) into the process
// environment. Variables already set are left untouched.
func loadDotEnv() error {
	path := os.Getenv(envDotFile)
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.PctChangeMode {
	case PctChangeHistory, PctChangeFixed:
	default:
		return fmt.Errorf("%w: pct_change_mode must be %q or %q, got %q",
			ErrInvalidConfig, PctChangeHistory, PctChangeFixed, c.PctChangeMode)
	}
	switch c.ScoreTableSource {
	case SourceCSV:
		if c.ScoreTableURI == "" {
			return fmt.Errorf("%w: score_table_uri is required for the csv source", ErrInvalidConfig)
		}
	case SourcePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres_dsn is required for the postgres source", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown score_table_source %q", ErrInvalidConfig, c.ScoreTableSource)
	}
	if c.RecordForecasts && c.PostgresDSN == "" {
		return fmt.Errorf("%w: record_forecasts requires postgres_dsn", ErrInvalidConfig)
	}
	if c.RecordQueueSize <= 0 || c.WorkerCount <= 0 {
		return fmt.Errorf("%w: queue_size and worker_count must be positive", ErrInvalidConfig)
	}
	return nil
}
