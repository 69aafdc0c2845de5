package service

import (
	"io"
	"time"

	"github.com/Darkwolf007/GeoDashboardApp/internal/adapters/mq/worker"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/forecast"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/scoretable"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEngine sets the forecast engine.
func WithEngine(e *forecast.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithScoreTable exposes the table used by the engine to score lookups.
func WithScoreTable(t *scoretable.Table) Option {
	return func(s *Service) {
		if t != nil {
			s.table = t
		}
	}
}

// WithCache enables cache-aside forecasting.
func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithRecorder enables asynchronous forecast recording.
func WithRecorder(r worker.Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithAmenityFinder enables amenity counting.
func WithAmenityFinder(f AmenityFinder) Option {
	return func(s *Service) {
		s.amenities = f
	}
}

// WithPctChangeMode records the configured pct-change mode for stats.
func WithPctChangeMode(mode string) Option {
	return func(s *Service) {
		if mode != "" {
			s.pctChangeMode = mode
		}
	}
}

// WithWorkerCount sets the number of recording workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the record queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the record fingerprint cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithClosers registers resources released by Stop, in order.
func WithClosers(closers ...io.Closer) Option {
	return func(s *Service) {
		s.closers = append(s.closers, closers...)
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
