package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Darkwolf007/GeoDashboardApp/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
				convey.So(cfg.PctChangeMode, convey.ShouldEqual, "history")
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 3_600)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GEODASH_ADDR", ":8080")
			_ = os.Setenv("GEODASH_SCORE_TABLE_URI", "s3://scores/weighted.csv")
			_ = os.Setenv("GEODASH_PCT_CHANGE_MODE", "fixed")
			_ = os.Setenv("GEODASH_WORKER_COUNT", "16")
			_ = os.Setenv("GEODASH_REDIS_ADDR", "localhost:6379")
			_ = os.Setenv("GEODASH_MIGRATE_ON_START", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ScoreTableURI, convey.ShouldEqual, "s3://scores/weighted.csv")
				convey.So(cfg.PctChangeMode, convey.ShouldEqual, config.PctChangeFixed)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
				convey.So(cfg.MigrateOnStart, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
addr: ":9090"
model_uri: "gs://models/price.yaml"
cors_allowed_origins:
  - "http://localhost:3000"
amenity_weights:
  metro: 0.1
  bar: -0.05
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("GEODASH_CONFIG", tmpFile)
			_ = os.Setenv("GEODASH_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values load and env vars still win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.ModelURI, convey.ShouldEqual, "gs://models/price.yaml")
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"http://localhost:3000"})
				convey.So(cfg.AmenityWeights, convey.ShouldResemble, map[string]float64{"metro": 0.1, "bar": -0.05})
				convey.So(cfg.ScoreTableURI, convey.ShouldEqual, "weighted.csv")
			})
		})

		convey.Convey("When loading config with an invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("GEODASH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("GEODASH_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with an empty addr", func() {
			_ = os.Setenv("GEODASH_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("GEODASH_WORKER_COUNT", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When a .env file is provided", func() {
			dotenv := filepath.Join(t.TempDir(), "geodash.env")
			convey.So(os.WriteFile(dotenv, []byte("GEODASH_OVERPASS_URL=http://overpass.local/api/interpreter\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("GEODASH_ENV_FILE", dotenv)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then its variables are picked up", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.OverpassURL, convey.ShouldEqual, "http://overpass.local/api/interpreter")
			})
		})

		convey.Convey("When the .env file is missing", func() {
			_ = os.Setenv("GEODASH_ENV_FILE", "/non/existent/.env")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"GEODASH_CONFIG",
		"GEODASH_ENV_FILE",
		"GEODASH_ADDR",
		"GEODASH_SCORE_TABLE_URI",
		"GEODASH_PCT_CHANGE_MODE",
		"GEODASH_WORKER_COUNT",
		"GEODASH_REDIS_ADDR",
		"GEODASH_MIGRATE_ON_START",
		"GEODASH_OVERPASS_URL",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "geodash.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
