// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Forecast(ctx context.Context, req model.ForecastRequest) (model.ForecastResult, error)
	LookupScore(ctx context.Context, area string, zone int, rooms string) (types.ScoreResponse, error)
	CountAmenities(ctx context.Context, req types.AmenitiesRequest) (types.AmenitiesResponse, error)
	GetStats(ctx context.Context) types.StatsResponse
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	predictHandler   *PredictHandler
	amenitiesHandler *AmenitiesHandler
	scoresHandler    *ScoresHandler
	cors             CORS
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		predictHandler:   NewPredictHandler(deps),
		amenitiesHandler: NewAmenitiesHandler(deps),
		scoresHandler:    NewScoresHandler(deps),
		cors:             CORS{AllowedOrigins: []string{"*"}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/amenities", MetricsMiddleware(s.amenitiesHandler.HandleAmenities, "amenities"))
	mux.HandleFunc("/scores", MetricsMiddleware(s.scoresHandler.HandleGetScore, "scores"))
}

// Wrap applies the cross-cutting middleware every route shares.
func (s *Server) Wrap(next http.Handler) http.Handler {
	return RequestID(s.cors.Middleware(next))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
