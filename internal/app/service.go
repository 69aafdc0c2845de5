// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Darkwolf007/GeoDashboardApp/internal/adapters/cache"
	"github.com/Darkwolf007/GeoDashboardApp/internal/adapters/mq/queue"
	"github.com/Darkwolf007/GeoDashboardApp/internal/adapters/mq/worker"
	"github.com/Darkwolf007/GeoDashboardApp/internal/adapters/overpass"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/dedupe"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/forecast"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/scoretable"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/types"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/logger"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/metrics"
)

// Cache stores computed forecasts by fingerprint. Get returns
// cache.ErrCacheMiss when nothing is stored.
type Cache interface {
	Get(ctx context.Context, fingerprint string) (model.ForecastResult, error)
	Set(ctx context.Context, fingerprint string, res model.ForecastResult) error
}

// AmenityFinder counts amenities around a point.
type AmenityFinder interface {
	CountAmenities(ctx context.Context, area overpass.Area) (model.AmenityCounter, error)
}

// forecastCounter is implemented by recorders that can report how many
// forecasts they hold.
type forecastCounter interface {
	CountForecasts(ctx context.Context) (int64, error)
}

// Service implements the API dependencies for the forecast dashboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	engine    *forecast.Engine
	table     *scoretable.Table
	cache     Cache
	recorder  worker.Recorder
	amenities AmenityFinder

	// Recording pipeline, created on Start when a recorder is configured
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	cancel  context.CancelFunc

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	pctChangeMode string
	closers       []io.Closer
	now           func() time.Time

	// State
	started   bool
	startedAt time.Time

	logger logger.Logger
}

// New constructs a new Service. Without options it forecasts with an empty
// score table in fallback mode and records nothing.
func New(opts ...Option) *Service {
	s := &Service{
		engine:        forecast.NewEngine(),
		table:         scoretable.New(nil),
		workerCount:   2,
		queueSize:     10_000,
		dedupeSize:    100_000,
		pctChangeMode: "history",
		now:           time.Now,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the recording workers when a recorder is configured.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting forecast service...",
		logger.String("predictor_mode", string(s.engine.Mode())),
		logger.String("pct_change_mode", s.pctChangeMode),
		logger.Int("score_table_rows", s.table.Len()),
		logger.Bool("cache", s.cache != nil),
		logger.Bool("amenities", s.amenities != nil),
	)

	if s.recorder != nil {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		s.cancel = cancel
		s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
		s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
		s.pool = worker.NewPool(s.workerCount, s.queue, s.recorder,
			worker.WithDeduper(s.deduper),
			worker.WithLogger(s.logger),
		)
		s.pool.Start(runCtx)
		s.logger.Info(ctx, "forecast recording enabled",
			logger.Int("workers", s.workerCount),
			logger.Int("queueSize", s.queueSize),
			logger.Int("dedupeSize", s.dedupeSize),
		)
	}

	s.started = true
	s.startedAt = s.now()
	return nil
}

// Stop drains the record queue and releases registered resources. It is
// safe to call on a service that was never started.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	if s.started {
		s.logger.Info(ctx, "stopping forecast service...")
	}

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "record queue not fully drained", logger.Error(err))
		}
		s.cancel()
		s.pool, s.queue, s.cancel = nil, nil, nil
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Warn(ctx, "error releasing resource", logger.Error(err))
		}
	}
	s.closers = nil

	if s.started {
		s.started = false
		s.logger.Info(ctx, "forecast service stopped")
	}
}

// Forecast computes the five-year forecast for req, serving it from the cache
// when possible. Any failure, including a panic inside the engine, is returned
// as an ErrPipeline error with no partial result.
func (s *Service) Forecast(ctx context.Context, req model.ForecastRequest) (model.ForecastResult, error) { //nolint:gocritic // hugeParam: request is a value
	start := time.Now()

	if err := req.Validate(); err != nil {
		metrics.RecordForecastError("invalid_request")
		return model.ForecastResult{}, fmt.Errorf("%w: %w", ErrPipeline, err)
	}

	fp, err := Fingerprint(req, s.variant())
	if err != nil {
		// Requests that cannot be fingerprinted are still computed, just
		// neither cached nor recorded.
		s.logger.Debug(ctx, "request not fingerprinted", logger.Error(err))
	}

	if fp != "" && s.cache != nil {
		res, cerr := s.cache.Get(ctx, fp)
		switch {
		case cerr == nil:
			metrics.RecordForecast("cache", msSince(start))
			return res, nil
		case !errors.Is(cerr, cache.ErrCacheMiss):
			s.logger.Warn(ctx, "forecast cache read failed", logger.Error(cerr))
		}
	}

	res, err := s.compute(ctx, req)
	if err != nil {
		metrics.RecordForecastError(failureReason(err))
		metrics.RecordErrorByComponent("service", "forecast")
		s.logger.Error(ctx, "forecast failed",
			logger.String("area", req.Area),
			logger.Int("zone_index", req.ZoneIndex),
			logger.String("rooms_en", req.Rooms),
			logger.Error(err),
		)
		return model.ForecastResult{}, err
	}

	if fp != "" {
		if s.cache != nil {
			if cerr := s.cache.Set(ctx, fp, res); cerr != nil {
				s.logger.Warn(ctx, "forecast cache write failed", logger.Error(cerr))
			}
		}
		s.record(ctx, fp, req, res)
	}

	metrics.RecordForecast("engine", msSince(start))
	return res, nil
}

func (s *Service) compute(ctx context.Context, req model.ForecastRequest) (res model.ForecastResult, err error) { //nolint:gocritic // hugeParam: request is a value
	defer func() {
		if r := recover(); r != nil {
			res, err = model.ForecastResult{}, fmt.Errorf("%w: panic: %v", ErrPipeline, r)
		}
	}()

	res, err = s.engine.Forecast(ctx, req)
	if err != nil {
		return model.ForecastResult{}, fmt.Errorf("%w: %w", ErrPipeline, err)
	}
	return res, nil
}

// record queues a forecast for persistence once per fingerprint.
func (s *Service) record(ctx context.Context, fp string, req model.ForecastRequest, res model.ForecastResult) { //nolint:gocritic // hugeParam: values are copied into the record
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.queue == nil {
		return
	}
	if s.deduper.SeenAndRecord(ctx, fp) {
		metrics.RecordForecastDuplicate()
		return
	}

	rec := model.ForecastRecord{
		ID:          uuid.NewString(),
		Fingerprint: fp,
		Request:     req,
		Result:      res,
		CreatedAt:   s.now().UTC(),
	}
	if !s.queue.Enqueue(ctx, rec) {
		s.deduper.Unrecord(ctx, fp)
		s.logger.Warn(ctx, "forecast record dropped", logger.String("id", rec.ID))
	}
}

// LookupScore returns the baseline score of one (area, zone, room type).
func (s *Service) LookupScore(_ context.Context, area string, zone int, rooms string) (types.ScoreResponse, error) {
	k := scoretable.NewKey(area, zone, rooms)
	score, ok := s.table.Lookup(k)
	metrics.RecordScoreLookup(ok)
	if !ok {
		return types.ScoreResponse{}, fmt.Errorf("%w: %s/%d/%s", ErrScoreNotFound, k.Area, k.Zone, k.Rooms)
	}
	return types.ScoreResponse{Area: k.Area, ZoneIndex: k.Zone, Rooms: k.Rooms, Score: score}, nil
}

// CountAmenities counts amenities around a point.
func (s *Service) CountAmenities(ctx context.Context, req types.AmenitiesRequest) (types.AmenitiesResponse, error) {
	if s.amenities == nil {
		return types.AmenitiesResponse{}, ErrAmenitiesUnavailable
	}
	counter, err := s.amenities.CountAmenities(ctx, overpass.Area{Lat: req.Lat, Lon: req.Lon, RadiusM: req.RadiusM})
	if err != nil {
		return types.AmenitiesResponse{}, err
	}
	return types.AmenitiesResponse{Amenities: counter}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) types.StatsResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.StatsResponse{
		PredictorMode:    string(s.engine.Mode()),
		PctChangeMode:    s.pctChangeMode,
		ScoreTableRows:   s.table.Len(),
		CacheEnabled:     s.cache != nil,
		RecordingEnabled: s.recorder != nil,
	}
	if s.started {
		stats.UptimeSeconds = int64(s.now().Sub(s.startedAt).Seconds())
	}
	if s.queue != nil {
		stats.QueueLength = s.queue.Len(ctx)
		metrics.UpdateQueueSize(stats.QueueLength)
	}
	if c, ok := s.recorder.(forecastCounter); ok {
		n, err := c.CountForecasts(ctx)
		if err != nil {
			s.logger.Warn(ctx, "count recorded forecasts failed", logger.Error(err))
		} else {
			stats.RecordedTotal = n
		}
	}
	return stats
}

// Mode reports how forecast prices are produced.
func (s *Service) Mode() model.PredictorMode { return s.engine.Mode() }

// variant keys the cache. It changes whenever a redeploy changes the score
// table, the amenity weights or the model, since Redis outlives the process.
func (s *Service) variant() string {
	return s.engine.Variant() + "|" + s.pctChangeMode
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, forecast.ErrNonFinite):
		return "non_finite"
	case errors.Is(err, forecast.ErrPredict):
		return "predictor"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal"
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
