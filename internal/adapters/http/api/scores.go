package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	service "github.com/Darkwolf007/GeoDashboardApp/internal/app"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/types"
)

// ScoreDependencies defines the interface for score lookups.
type ScoreDependencies interface {
	LookupScore(ctx context.Context, area string, zone int, rooms string) (types.ScoreResponse, error)
}

// ScoresHandler handles score table lookups.
type ScoresHandler struct {
	deps ScoreDependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoreDependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// HandleGetScore handles GET /scores?area=&zone=&rooms= requests.
func (h *ScoresHandler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_score"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	area, rooms := strings.TrimSpace(q.Get("area")), strings.TrimSpace(q.Get("rooms"))
	switch {
	case area == "":
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errors.New("missing area")))
		return
	case rooms == "":
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errors.New("missing rooms")))
		return
	}
	zone, err := strconv.Atoi(strings.TrimSpace(q.Get("zone")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errors.New("zone must be an integer")))
		return
	}

	score, err := h.deps.LookupScore(r.Context(), area, zone, rooms)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, score)
	case errors.Is(err, service.ErrScoreNotFound):
		writeError(w, http.StatusNotFound, "not_found", wrapKind(op, ErrNotFound, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
