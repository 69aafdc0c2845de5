package forecast

import (
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/amenity"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/predictor"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/scoretable"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithScoreTable sets the baseline score table.
func WithScoreTable(t *scoretable.Table) Option {
	return func(e *Engine) {
		if t != nil {
			e.table = t
		}
	}
}

// WithAdjuster sets the amenity adjuster.
func WithAdjuster(a *amenity.Adjuster) Option {
	return func(e *Engine) {
		if a != nil {
			e.adjuster = a
		}
	}
}

// WithPredictor sets the regression model. A nil predictor keeps the fallback.
func WithPredictor(p predictor.Predictor) Option {
	return func(e *Engine) {
		if p != nil {
			e.predictor = p
		}
	}
}

// WithPctChangePolicy sets how the growth signal is derived.
func WithPctChangePolicy(p PctChangePolicy) Option {
	return func(e *Engine) {
		if p != nil {
			e.policy = p
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}
