// Package types contains the JSON shapes exchanged over the HTTP API.
package types

import "github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"

// ForecastPoint is one year of a forecast as sent to clients.
type ForecastPoint struct {
	Year  string  `json:"year"`
	Price float64 `json:"price"`
}

// ForecastResponse is the success body of POST /predict.
type ForecastResponse struct {
	Forecast []ForecastPoint `json:"forecast"`
}

// NewForecastResponse converts a domain result to its wire form.
func NewForecastResponse(res model.ForecastResult) ForecastResponse { //nolint:gocritic // hugeParam: value semantics
	out := ForecastResponse{Forecast: make([]ForecastPoint, len(res.Points))}
	for i, p := range res.Points {
		out.Forecast[i] = ForecastPoint{Year: p.YearString(), Price: p.Price}
	}
	return out
}

// ErrorPayload is the body returned when a forecast cannot be computed.
type ErrorPayload struct {
	Error string `json:"error"`
}

// ScoreResponse is the body of GET /scores.
type ScoreResponse struct {
	Area      string  `json:"area"`
	ZoneIndex int     `json:"zone_index"`
	Rooms     string  `json:"rooms_en"`
	Score     float64 `json:"weighted_score"`
}

// AmenitiesRequest is the body of POST /amenities.
type AmenitiesRequest struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	RadiusM float64 `json:"radius_m"`
}

// AmenitiesResponse carries a counter ready to be sent back as
// amenities_counter in a forecast request.
type AmenitiesResponse struct {
	Amenities model.AmenityCounter `json:"amenities_counter"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	PredictorMode    string `json:"predictor_mode"`
	PctChangeMode    string `json:"pct_change_mode"`
	ScoreTableRows   int    `json:"score_table_rows"`
	CacheEnabled     bool   `json:"cache_enabled"`
	RecordingEnabled bool   `json:"recording_enabled"`
	QueueLength      int    `json:"queue_length"`
	RecordedTotal    int64  `json:"recorded_total"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
}
