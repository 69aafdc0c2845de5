package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/Darkwolf007/GeoDashboardApp/internal/adapters/http/api"
	"github.com/Darkwolf007/GeoDashboardApp/internal/config"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/types"
)

const scoreCSV = `area_name_en,zone_index,rooms_en,weighted_score
Downtown,2,2 B/R,0.5
`

func writeTable(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weighted.csv")
	if err := os.WriteFile(path, []byte(scoreCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPredictCommand(t *testing.T) {
	convey.Convey("Given a score table on disk", t, func() {
		t.Setenv("GEODASH_SCORE_TABLE_URI", writeTable(t))
		t.Setenv("GEODASH_POSTGRES_DSN", "")
		t.Setenv("GEODASH_REDIS_ADDR", "")

		convey.Convey("When a request is piped to predict", func() {
			var out bytes.Buffer
			cmd := newRootCmd()
			cmd.SetArgs([]string{"predict"})
			cmd.SetIn(strings.NewReader(`{"zone_index": 2, "area": "Downtown", "rooms_en": "2 B/R",
				"amenities_counter": {}, "actual_price": {"2023": 1000000}}`))
			cmd.SetOut(&out)
			err := cmd.ExecuteContext(context.Background())

			convey.Convey("Then the forecast is printed as JSON", func() {
				convey.So(err, convey.ShouldBeNil)
				var resp types.ForecastResponse
				convey.So(json.Unmarshal(out.Bytes(), &resp), convey.ShouldBeNil)
				convey.So(resp.Forecast, convey.ShouldHaveLength, 6)
				convey.So(resp.Forecast[0].Year, convey.ShouldEqual, "2023")
				convey.So(resp.Forecast[1].Year, convey.ShouldEqual, "2024")
			})
		})

		convey.Convey("When the zone index is an integral float", func() {
			var out bytes.Buffer
			cmd := newRootCmd()
			cmd.SetArgs([]string{"predict"})
			cmd.SetIn(strings.NewReader(`{"zone_index": 2.0, "area": "Downtown", "rooms_en": "2 B/R",
				"amenities_counter": {}}`))
			cmd.SetOut(&out)
			err := cmd.ExecuteContext(context.Background())

			convey.Convey("Then it is accepted as over HTTP", func() {
				convey.So(err, convey.ShouldBeNil)
				var resp types.ForecastResponse
				convey.So(json.Unmarshal(out.Bytes(), &resp), convey.ShouldBeNil)
				convey.So(resp.Forecast, convey.ShouldHaveLength, 6)
			})
		})

		convey.Convey("When the request violates the request schema", func() {
			cmd := newRootCmd()
			cmd.SetArgs([]string{"predict"})
			cmd.SetIn(strings.NewReader(`{"zone_index": 2.5, "area": "Downtown", "rooms_en": "2 B/R"}`))
			cmd.SetOut(&bytes.Buffer{})
			err := cmd.ExecuteContext(context.Background())

			convey.Convey("Then predict fails with a validation error", func() {
				convey.So(errors.Is(err, api.ErrValidation), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the request file does not exist", func() {
			cmd := newRootCmd()
			cmd.SetArgs([]string{"predict", "--request", filepath.Join(t.TempDir(), "nope.json")})
			cmd.SetOut(&bytes.Buffer{})

			convey.Convey("Then predict fails", func() {
				convey.So(cmd.ExecuteContext(context.Background()), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestDatabaseCommandsNeedDSN(t *testing.T) {
	convey.Convey("Given no Postgres DSN", t, func() {
		t.Setenv("GEODASH_SCORE_TABLE_URI", writeTable(t))
		t.Setenv("GEODASH_POSTGRES_DSN", "")

		for _, name := range []string{"import-scores", "migrate"} {
			cmd := newRootCmd()
			cmd.SetArgs([]string{name})
			cmd.SetOut(&bytes.Buffer{})
			err := cmd.ExecuteContext(context.Background())

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		}
	})
}

func TestUnknownCommand(t *testing.T) {
	convey.Convey("Unknown subcommands are rejected", t, func() {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"serve"})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		convey.So(cmd.Execute(), convey.ShouldNotBeNil)
	})
}
