package loadtest

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/Darkwolf007/GeoDashboardApp/pkg/logger"
)

// forecastYears is the number of points every forecast carries.
const forecastYears = 6

// verifyResults checks every forecast and compares repeats of the same request.
func verifyResults(ctx context.Context, cfg *Config, log logger.Logger, results []outcome) Stats {
	stats := Stats{Sent: len(results)}
	first := make(map[int]predictResult, cfg.Unique)

	for i, o := range results {
		switch {
		case o.err != nil:
			stats.Failed++
			if cfg.Verbose {
				log.Warn(ctx, "request failed", logger.Int("request", i), logger.Error(o.err))
			}
			continue
		case o.result.Error != "":
			stats.ErrorPayload++
		default:
			stats.Forecasts++
			if err := checkForecast(o.result.Forecast); err != nil {
				stats.Invalid++
				log.Error(ctx, "invalid forecast", logger.Int("request", i), logger.Error(err))
				continue
			}
		}

		prev, seen := first[o.key]
		if !seen {
			first[o.key] = o.result
			continue
		}
		if !sameResult(prev, o.result) {
			stats.Mismatched++
			log.Error(ctx, "identical requests produced different responses",
				logger.Int("request", i), logger.Int("distinct", o.key))
		}
	}
	return stats
}

// checkForecast enforces the response invariants: six points, consecutive
// ascending years, finite positive prices.
func checkForecast(points []forecastPoint) error {
	if len(points) != forecastYears {
		return fmt.Errorf("got %d points, want %d", len(points), forecastYears)
	}
	prevYear := 0
	for i, p := range points {
		year, err := strconv.Atoi(p.Year)
		if err != nil {
			return fmt.Errorf("point %d: bad year %q", i, p.Year)
		}
		if i > 0 && year != prevYear+1 {
			return fmt.Errorf("point %d: year %d does not follow %d", i, year, prevYear)
		}
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price <= 0 {
			return fmt.Errorf("point %d: bad price %v", i, p.Price)
		}
		prevYear = year
	}
	return nil
}

func sameResult(a, b predictResult) bool {
	return a.Error == b.Error && slices.Equal(a.Forecast, b.Forecast)
}
