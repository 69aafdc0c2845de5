// Package forecast projects property prices five years ahead from an anchor
// price, an adjusted desirability score and a growth signal derived from the
// price history.
package forecast

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/amenity"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/predictor"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/scoretable"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/series"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/logger"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/metrics"
)

// Horizon is the number of projected years.
const Horizon = 5

// fallbackPctWeight scales the growth signal in the arithmetic fallback.
const fallbackPctWeight = 0.5

// Engine computes forecasts. All of its collaborators are fixed at
// construction, so one Engine may serve concurrent requests.
type Engine struct {
	table     *scoretable.Table
	adjuster  *amenity.Adjuster
	predictor predictor.Predictor
	policy    PctChangePolicy
	log       logger.Logger
}

// NewEngine creates an Engine. Without options it has an empty score table,
// the default amenity weights, no model and the history-aware policy.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		table:     scoretable.New(nil),
		adjuster:  amenity.NewAdjuster(),
		predictor: predictor.Unavailable{},
		policy:    HistoryPolicy{},
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mode reports whether a model is configured.
func (e *Engine) Mode() model.PredictorMode {
	if _, ok := e.predictor.(predictor.Unavailable); ok {
		return model.ModeFallback
	}
	return model.ModeModel
}

// Variant identifies everything besides the request that shapes a forecast:
// the mode, the model identity, the pct-change policy, the score table and
// the amenity weights.
// Two engines with the same Variant give the same result for a request.
func (e *Engine) Variant() string {
	modelID := "none"
	if id, ok := e.predictor.(predictor.Identifier); ok {
		modelID = id.ID()
	} else if e.Mode() == model.ModeModel {
		modelID = fmt.Sprintf("%T", e.predictor)
	}
	return strings.Join([]string{
		string(e.Mode()), modelID, fmt.Sprintf("%#v", e.policy), e.table.Digest(), e.adjuster.Digest(),
	}, "|")
}

// Score is the adjusted desirability score of a request.
type Score struct {
	Value       float64
	Baseline    float64
	HasBaseline bool
	Adjustment  float64
}

// Score looks up the baseline for the request's key and applies the amenity
// adjustment.
func (e *Engine) Score(ctx context.Context, req model.ForecastRequest) Score {
	key := scoretable.NewKey(req.Area, req.ZoneIndex, req.Rooms)
	baseline, found := e.table.Lookup(key)
	adj := e.adjuster.Adjust(req.Amenities)
	value := scoretable.Compose(baseline, found, adj)

	e.log.Debug(ctx, "score composed",
		logger.String("area", key.Area),
		logger.Int("zone", key.Zone),
		logger.String("rooms", key.Rooms),
		logger.Float64("amenities_sum", amenity.Sum(req.Amenities)),
		logger.Bool("baseline_found", found),
		logger.Float64("baseline", baseline),
		logger.Float64("adjustment", adj),
		logger.Float64("score", value),
	)
	return Score{Value: value, Baseline: baseline, HasBaseline: found, Adjustment: adj}
}

// Forecast returns the anchor point followed by Horizon projected years.
// Every step is priced in the engine's Mode. A predictor error aborts the
// forecast and no partial result is returned.
func (e *Engine) Forecast(ctx context.Context, req model.ForecastRequest) (model.ForecastResult, error) {
	anchor := series.Reconcile(req.ActualPrice, req.PredictPrice)
	score := e.Score(ctx, req)

	e.log.Debug(ctx, "anchor reconciled",
		logger.String("source", string(anchor.Source)),
		logger.Int("year", anchor.Year),
		logger.Float64("price", anchor.Price),
		logger.Int("min_year", anchor.MinYear),
		logger.Int("max_year", anchor.MaxYear),
	)

	res := model.ForecastResult{
		Points:      make([]model.ForecastPoint, 0, Horizon+1),
		Steps:       make([]model.StepDetail, 0, Horizon),
		Score:       score.Value,
		Baseline:    score.Baseline,
		HasBaseline: score.HasBaseline,
		Mode:        e.Mode(),
	}
	res.Points = append(res.Points, model.ForecastPoint{Year: anchor.Year, Price: anchor.Price})

	actual := req.ActualPrice.Prices()
	predicted := req.PredictPrice.Prices()
	lastPrice := anchor.Price

	for step := 1; step <= Horizon; step++ {
		if err := ctx.Err(); err != nil {
			return model.ForecastResult{}, err
		}

		year := anchor.Year + step
		raw, rule := e.policy.PctChange(History{
			Step: step, LastPrice: lastPrice, Actual: actual, Predicted: predicted,
		})
		pct := ClampPctChange(raw)

		features := predictor.Features{
			NormalizedYear: normalizeYear(year, anchor.MinYear, anchor.MaxYear),
			Score:          score.Value,
			ZoneIndex:      float64(req.ZoneIndex),
			PctChange:      pct,
		}

		price, err := e.price(ctx, res.Mode, features, lastPrice)
		if err != nil {
			return model.ForecastResult{}, fmt.Errorf("step %d (year %d): %w", step, year, err)
		}
		if math.IsNaN(price) || math.IsInf(price, 0) {
			return model.ForecastResult{}, fmt.Errorf("%w: step %d (year %d)", ErrNonFinite, step, year)
		}
		metrics.RecordPctChangeRule(string(rule))
		metrics.RecordPredictorCall(string(res.Mode))

		e.log.Debug(ctx, "forecast step",
			logger.Int("year", year),
			logger.Any("features", features.Vector()),
			logger.Float64("pct_change", pct),
			logger.String("rule", string(rule)),
			logger.Float64("price", price),
		)

		res.Points = append(res.Points, model.ForecastPoint{Year: year, Price: price})
		res.Steps = append(res.Steps, model.StepDetail{
			Year: year, Features: features.Vector(), PctChange: pct, Rule: string(rule), Mode: res.Mode,
		})
		lastPrice = price
		predicted = append(predicted, price)
	}
	return res, nil
}

// price runs the model, or the fallback formula when the engine has none.
// The mode is fixed at construction: a model that fails mid-request fails the
// request instead of switching formulas for the remaining steps.
func (e *Engine) price(ctx context.Context, mode model.PredictorMode, f predictor.Features, lastPrice float64) (float64, error) {
	if mode == model.ModeFallback {
		return lastPrice * (1 + f.PctChange*fallbackPctWeight + f.Score), nil
	}
	logPrice, err := e.predictor.Predict(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPredict, err)
	}
	return math.Expm1(logPrice), nil
}

func normalizeYear(year, minYear, maxYear int) float64 {
	if maxYear <= minYear {
		return 0
	}
	return float64(year-minYear) / float64(maxYear-minYear)
}
