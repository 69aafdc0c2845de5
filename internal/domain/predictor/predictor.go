// Package predictor defines the regression model contract used by the forecast
// engine and a linear model that can be loaded from a YAML artifact.
package predictor

import "context"

// FeatureNames is the exact order in which features are presented to a model.
var FeatureNames = [4]string{"normalized_year", "weighted_score", "zone_index", "pct_change"} //nolint:gochecknoglobals // fixed contract

// Features is the input of one forecast step.
type Features struct {
	NormalizedYear float64
	Score          float64
	ZoneIndex      float64
	PctChange      float64
}

// Vector returns the features in FeatureNames order.
func (f Features) Vector() [4]float64 {
	return [4]float64{f.NormalizedYear, f.Score, f.ZoneIndex, f.PctChange}
}

// Predictor maps features to a log price, log(1 + price).
type Predictor interface {
	Predict(ctx context.Context, f Features) (float64, error)
}

// Identifier is implemented by predictors that can name the model they
// serve. Forecasts cached under one identity are not reused under another.
type Identifier interface {
	ID() string
}

// Unavailable is the predictor of a process without a model. An engine built
// with it prices every step with the fallback formula and never calls it; it
// fails with ErrUnavailable if called anyway.
type Unavailable struct{}

// Predict implements Predictor.
func (Unavailable) Predict(context.Context, Features) (float64, error) {
	return 0, ErrUnavailable
}
