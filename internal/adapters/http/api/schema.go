package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/types"
)

// forecastRequestSchema mirrors the OpenAPI schema for POST /predict. Price
// histories are only required to be objects: entries with malformed years or
// prices are dropped while decoding rather than rejected.
const forecastRequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["zone_index", "area", "rooms_en", "amenities_counter"],
  "properties": {
    "zone_index": {"type": "integer"},
    "area": {"type": "string"},
    "rooms_en": {"type": "string"},
    "amenities_counter": {
      "type": "object",
      "additionalProperties": {"type": "number"}
    },
    "actual_price": {"type": ["object", "null"]},
    "predict_price": {"type": ["object", "null"]}
  }
}`

const amenitiesRequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["lat", "lon", "radius_m"],
  "properties": {
    "lat": {"type": "number", "minimum": -90, "maximum": 90},
    "lon": {"type": "number", "minimum": -180, "maximum": 180},
    "radius_m": {"type": "number", "exclusiveMinimum": 0, "maximum": 5000}
  }
}`

// maxZoneIndex keeps zone indexes exactly representable as float64 features.
const maxZoneIndex = 1 << 53

var (
	forecastSchema  = mustSchema(forecastRequestSchema)
	amenitiesSchema = mustSchema(amenitiesRequestSchema)
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile request schema: %v", err))
	}
	return s
}

// validateDocument checks body against schema and reports every violation.
func validateDocument(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}
	errs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = desc.String()
	}
	return errors.New(strings.Join(errs, "; "))
}

// forecastRequest is the wire shape of POST /predict. The zone index is
// decoded as a number so integral floats such as 2.0 are accepted.
type forecastRequest struct {
	ZoneIndex    json.Number          `json:"zone_index"`
	Area         string               `json:"area"`
	Rooms        string               `json:"rooms_en"`
	Amenities    model.AmenityCounter `json:"amenities_counter"`
	ActualPrice  model.PriceSeries    `json:"actual_price"`
	PredictPrice model.PriceSeries    `json:"predict_price"`
}

// ParseForecastRequest validates a /predict body against the request schema
// and decodes it. Every failure wraps ErrValidation. The CLI shares it so a
// request file is accepted exactly when the HTTP endpoint would accept it.
func ParseForecastRequest(body []byte) (model.ForecastRequest, error) {
	if err := validateDocument(forecastSchema, body); err != nil {
		return model.ForecastRequest{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	req, err := decodeForecastRequest(body)
	if err != nil {
		return model.ForecastRequest{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return req, nil
}

func decodeForecastRequest(body []byte) (model.ForecastRequest, error) {
	var in forecastRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return model.ForecastRequest{}, err
	}
	zone, err := zoneIndex(in.ZoneIndex)
	if err != nil {
		return model.ForecastRequest{}, err
	}
	return model.ForecastRequest{
		ZoneIndex:    zone,
		Area:         in.Area,
		Rooms:        in.Rooms,
		Amenities:    in.Amenities,
		ActualPrice:  in.ActualPrice,
		PredictPrice: in.PredictPrice,
	}, nil
}

func zoneIndex(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil && i >= -maxZoneIndex && i <= maxZoneIndex {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > maxZoneIndex {
		return 0, fmt.Errorf("zone_index must be an integer, got %s", n.String())
	}
	return int(f), nil
}

func decodeAmenitiesRequest(body []byte) (types.AmenitiesRequest, error) {
	var in types.AmenitiesRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return types.AmenitiesRequest{}, err
	}
	return in, nil
}
