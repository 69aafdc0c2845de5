// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strconv"
	"time"
)

// AmenityCounter maps an amenity name, as labelled by the client, to a count.
type AmenityCounter map[string]float64

// ForecastRequest asks for a five-year forecast of one (area, zone, room type).
// Fields mirror the OpenAPI schema for /predict.
type ForecastRequest struct {
	ZoneIndex    int            `json:"zone_index"`
	Area         string         `json:"area"`
	Rooms        string         `json:"rooms_en"`
	Amenities    AmenityCounter `json:"amenities_counter"`
	ActualPrice  PriceSeries    `json:"actual_price,omitempty"`
	PredictPrice PriceSeries    `json:"predict_price,omitempty"`
}

// Validate checks the fields the engine cannot work around.
func (r ForecastRequest) Validate() error {
	for name, count := range r.Amenities {
		if count != count { // NaN
			return fmt.Errorf("%w: amenity %q has no numeric count", ErrInvalidRequest, name)
		}
	}
	return nil
}

// ForecastPoint is one priced year of a forecast.
type ForecastPoint struct {
	Year  int
	Price float64
}

// YearString renders the year the way it is keyed on the wire.
func (p ForecastPoint) YearString() string { return strconv.Itoa(p.Year) }

// PredictorMode names how forecast prices were produced.
type PredictorMode string

// Predictor modes.
const (
	ModeModel    PredictorMode = "model"
	ModeFallback PredictorMode = "fallback"
)

// StepDetail records how one projected year was priced.
type StepDetail struct {
	Year int
	// Features in model column order.
	Features  [4]float64
	PctChange float64
	// Rule names the percentage-change rule that applied.
	Rule string
	Mode PredictorMode
}

// ForecastResult is the anchor point followed by five projected years.
type ForecastResult struct {
	Points []ForecastPoint
	Steps  []StepDetail
	// Score is the adjusted desirability score used for every step.
	Score float64
	// Baseline is the score table value, when the key was found.
	Baseline    float64
	HasBaseline bool
	Mode        PredictorMode
}

// AsSeries returns the forecast as a price series, suitable for feeding back
// as the predicted history of a follow-up request.
func (r ForecastResult) AsSeries() PriceSeries {
	out := make(PriceSeries, 0, len(r.Points))
	for _, p := range r.Points {
		out = out.With(p.Year, p.Price)
	}
	return out
}

// ForecastRecord is a computed forecast queued for persistence.
type ForecastRecord struct {
	ID string
	// Fingerprint identifies the request content; equal requests share it.
	Fingerprint string
	Request     ForecastRequest
	Result      ForecastResult
	CreatedAt   time.Time
}
