package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/Darkwolf007/GeoDashboardApp/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
			convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"*"})
			convey.So(cfg.ScoreTableSource, convey.ShouldEqual, config.SourceCSV)
			convey.So(cfg.ScoreTableURI, convey.ShouldEqual, "weighted.csv")
			convey.So(cfg.PctChangeMode, convey.ShouldEqual, config.PctChangeHistory)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.RecordQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("An unknown pct change mode is rejected", func() {
			cfg.PctChangeMode = "linear"
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "pct_change_mode")
		})

		convey.Convey("The fixed pct change mode is accepted", func() {
			cfg.PctChangeMode = config.PctChangeFixed
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("The postgres source needs a DSN", func() {
			cfg.ScoreTableSource = config.SourcePostgres
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)

			cfg.PostgresDSN = "postgres://localhost/geodash"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("An unknown source is rejected", func() {
			cfg.ScoreTableSource = "parquet"
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("The csv source needs a URI", func() {
			cfg.ScoreTableURI = ""
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("Recording forecasts needs a DSN", func() {
			cfg.RecordForecasts = true
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("Workers and queue must be positive", func() {
			cfg.WorkerCount = 0
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})
	})
}
