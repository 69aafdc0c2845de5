package worker

import (
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/dedupe"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDeduper lets a worker forget the fingerprint of a record that failed to
// persist, so a later identical forecast is recorded again.
func WithDeduper(d dedupe.Deduper) Option {
	return func(w *InMemoryWorker) {
		if d != nil {
			w.deduper = d
		}
	}
}
