package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	app "github.com/Darkwolf007/GeoDashboardApp/internal/app"
	"github.com/Darkwolf007/GeoDashboardApp/internal/config"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/types"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/logger"
)

const scoreCSV = `,area_name_en,zone_index,rooms_en,weighted_score
0,Downtown,2,2 B/R,0.5
1,Marina,1,Studio,0.3
`

func TestHandlerIntegration(t *testing.T) {
	convey.Convey("Given a service built from environment configuration", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "weighted.csv")
		convey.So(os.WriteFile(path, []byte(scoreCSV), 0o600), convey.ShouldBeNil)

		t.Setenv("GEODASH_ADDR", ":0")
		t.Setenv("GEODASH_SCORE_TABLE_URI", path)
		t.Setenv("GEODASH_WORKER_COUNT", "2")
		t.Setenv("GEODASH_PCT_CHANGE_MODE", "history")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)

		svc, err := app.NewFromConfig(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		h := newHandler(ctx, svc, cfg)

		convey.Convey("Then /predict returns six consecutive years", func() {
			body := `{"zone_index": 2, "area": "Downtown", "rooms_en": "2 B/R",
				"amenities_counter": {}, "actual_price": {"2022": 1000000, "2023": 1100000}}`
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body)))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

			var resp types.ForecastResponse
			convey.So(json.Unmarshal(w.Body.Bytes(), &resp), convey.ShouldBeNil)
			convey.So(resp.Forecast, convey.ShouldHaveLength, 6)
			convey.So(resp.Forecast[0].Year, convey.ShouldEqual, "2024")
			convey.So(resp.Forecast[5].Year, convey.ShouldEqual, "2029")
		})

		convey.Convey("Then the score table is reachable", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scores?area=Marina&zone=1&rooms=Studio", nil))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"weighted_score":0.3`)
		})

		convey.Convey("Then stats, docs and the dashboard are mounted", func() {
			for _, path := range []string{"/stats", "/openapi.yaml", "/api-docs", "/"} {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then amenity counting is unavailable without an Overpass endpoint", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/amenities",
				strings.NewReader(`{"lat": 25.2, "lon": 55.3, "radius_m": 500}`)))
			convey.So(w.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestRunErrors(t *testing.T) {
	convey.Convey("Given a configuration pointing at a missing score table", t, func() {
		cfg := config.New(context.Background())
		cfg.ScoreTableURI = filepath.Join(t.TempDir(), "missing.csv")

		convey.Convey("Then run fails before serving", func() {
			convey.So(run(context.Background(), cfg, logger.Nop()), convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given an empty listen address", t, func() {
		t.Setenv("GEODASH_ADDR", "")
		t.Setenv("GEODASH_SCORE_TABLE_URI", "weighted.csv")

		convey.Convey("Then configuration loading fails", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background metrics updaters", t, func() {
		svc := app.New()

		convey.Convey("Then they stop when the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(context.Background(), svc) }, convey.ShouldNotPanic)
		})
	})
}
