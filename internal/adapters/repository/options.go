package repository

import "github.com/Darkwolf007/GeoDashboardApp/pkg/logger"

// Option applies a configuration option to Postgres.
type Option func(*Postgres)

// WithLogger sets the repository logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Postgres) {
		if l != nil {
			p.logger = l
		}
	}
}
