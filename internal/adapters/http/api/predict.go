package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/types"
)

// ForecastDependencies defines the interface for forecasting.
type ForecastDependencies interface {
	Forecast(ctx context.Context, req model.ForecastRequest) (model.ForecastResult, error)
}

// PredictHandler handles forecast requests.
type PredictHandler struct {
	deps ForecastDependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps ForecastDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles POST /predict requests.
//
// A body that does not match the request schema is rejected with 422. A
// well-formed request whose forecast cannot be computed is answered with 200
// and {"error": msg}, never with a partial forecast.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body, ok := readBody(w, r, op)
	if !ok {
		return
	}
	req, err := ParseForecastRequest(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", fmt.Errorf("%s: %w", op, err))
		return
	}

	res, err := h.deps.Forecast(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusOK, types.ErrorPayload{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, types.NewForecastResponse(res))
}

// readBody reads a bounded request body, writing the error response itself
// when it fails.
func readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err == nil {
		return body, true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", wrapKind(op, ErrBadRequest, err))
		return nil, false
	}
	writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
	return nil, false
}
