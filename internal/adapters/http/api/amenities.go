package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Darkwolf007/GeoDashboardApp/internal/adapters/overpass"
	service "github.com/Darkwolf007/GeoDashboardApp/internal/app"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/types"
)

// AmenityDependencies defines the interface for amenity counting.
type AmenityDependencies interface {
	CountAmenities(ctx context.Context, req types.AmenitiesRequest) (types.AmenitiesResponse, error)
}

// AmenitiesHandler handles amenity counting requests.
type AmenitiesHandler struct {
	deps AmenityDependencies
}

// NewAmenitiesHandler creates a new amenities handler.
func NewAmenitiesHandler(deps AmenityDependencies) *AmenitiesHandler {
	return &AmenitiesHandler{deps: deps}
}

// HandleAmenities handles POST /amenities requests. The response counter can
// be sent unchanged as amenities_counter in a forecast request.
func (h *AmenitiesHandler) HandleAmenities(w http.ResponseWriter, r *http.Request) {
	const op = "api.amenities"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body, ok := readBody(w, r, op)
	if !ok {
		return
	}
	if err := validateDocument(amenitiesSchema, body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", wrapKind(op, ErrValidation, err))
		return
	}
	req, err := decodeAmenitiesRequest(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", wrapKind(op, ErrValidation, err))
		return
	}

	resp, err := h.deps.CountAmenities(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, service.ErrAmenitiesUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", wrapKind(op, ErrUnavailable, err))
	case errors.Is(err, overpass.ErrInvalidArea):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", wrapKind(op, ErrValidation, err))
	default:
		writeError(w, http.StatusBadGateway, "upstream_error", wrapKind(op, ErrUpstream, err))
	}
}
