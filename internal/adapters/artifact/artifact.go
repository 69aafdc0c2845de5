// Package artifact opens score tables and model files from local disk, S3 or
// Google Cloud Storage, selected by URI scheme.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
)

// URI schemes understood by Router.
const (
	SchemeFile = "file"
	SchemeS3   = "s3"
	SchemeGCS  = "gs"
)

var (
	// ErrUnsupportedScheme is returned for URIs no fetcher is registered for.
	ErrUnsupportedScheme = errors.New("unsupported artifact scheme")
	// ErrInvalidURI is returned for URIs that do not name a bucket and key.
	ErrInvalidURI = errors.New("invalid artifact uri")
)

// Fetcher opens the artifact addressed by a location.
type Fetcher interface {
	Open(ctx context.Context, loc Location) (io.ReadCloser, error)
}

// Location is a parsed artifact URI.
type Location struct {
	Scheme string
	// Bucket is empty for local files.
	Bucket string
	// Key is the object key, or the file path for local files.
	Key string
}

func (l Location) String() string {
	if l.Scheme == SchemeFile {
		return l.Key
	}
	return l.Scheme + "://" + l.Bucket + "/" + l.Key
}

// Parse splits an artifact URI. Plain paths and file:// URIs are local.
func Parse(uri string) (Location, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Location{}, fmt.Errorf("%w: empty", ErrInvalidURI)
	}
	if !strings.Contains(uri, "://") {
		return Location{Scheme: SchemeFile, Key: uri}, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == SchemeFile {
		return Location{Scheme: SchemeFile, Key: u.Path}, nil
	}

	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return Location{}, fmt.Errorf("%w: %s needs bucket and key", ErrInvalidURI, uri)
	}
	return Location{Scheme: scheme, Bucket: u.Host, Key: key}, nil
}

// Local opens files from the filesystem.
type Local struct{}

// Open implements Fetcher.
func (Local) Open(_ context.Context, loc Location) (io.ReadCloser, error) {
	f, err := os.Open(loc.Key)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", loc.Key, err)
	}
	return f, nil
}

// Router dispatches to a Fetcher per scheme. Remote fetchers are created
// lazily so a deployment reading only local files never needs cloud
// credentials.
type Router struct {
	fetchers map[string]func(ctx context.Context) (Fetcher, error)
	cache    map[string]Fetcher
}

// NewRouter returns a Router that handles local files, plus any schemes
// registered through options.
func NewRouter(opts ...Option) *Router {
	r := &Router{
		fetchers: map[string]func(context.Context) (Fetcher, error){
			SchemeFile: func(context.Context) (Fetcher, error) { return Local{}, nil },
		},
		cache: make(map[string]Fetcher),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open parses uri and opens it with the matching fetcher.
// Router is not safe for concurrent Open calls; artifacts are read at startup.
func (r *Router) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	loc, err := Parse(uri)
	if err != nil {
		return nil, err
	}
	f, err := r.fetcher(ctx, loc.Scheme)
	if err != nil {
		return nil, err
	}
	return f.Open(ctx, loc)
}

// Opener binds uri so the result can be handed to loaders that take an open
// function, such as the CSV score source.
func (r *Router) Opener(uri string) func(ctx context.Context) (io.ReadCloser, error) {
	return func(ctx context.Context) (io.ReadCloser, error) {
		return r.Open(ctx, uri)
	}
}

func (r *Router) fetcher(ctx context.Context, scheme string) (Fetcher, error) {
	if f, ok := r.cache[scheme]; ok {
		return f, nil
	}
	mk, ok := r.fetchers[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
	f, err := mk(ctx)
	if err != nil {
		return nil, fmt.Errorf("init %s fetcher: %w", scheme, err)
	}
	r.cache[scheme] = f
	return f, nil
}
