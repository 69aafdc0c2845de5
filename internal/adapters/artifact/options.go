package artifact

import "context"

// Option configures a Router.
type Option func(*Router)

// WithFetcher registers a ready-made fetcher for scheme.
func WithFetcher(scheme string, f Fetcher) Option {
	return func(r *Router) {
		r.cache[scheme] = f
	}
}

// WithS3 enables s3:// URIs.
func WithS3(cfg S3Config) Option {
	return func(r *Router) {
		r.fetchers[SchemeS3] = func(ctx context.Context) (Fetcher, error) {
			return NewS3(ctx, cfg)
		}
	}
}

// WithGCS enables gs:// URIs using Application Default Credentials.
func WithGCS() Option {
	return func(r *Router) {
		r.fetchers[SchemeGCS] = func(ctx context.Context) (Fetcher, error) {
			return NewGCS(ctx)
		}
	}
}
