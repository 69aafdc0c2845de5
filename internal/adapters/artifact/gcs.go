package artifact

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCS reads artifacts from Google Cloud Storage.
type GCS struct {
	client *gcs.Client
}

// NewGCS creates a GCS-backed Fetcher using Application Default Credentials.
func NewGCS(ctx context.Context) (*GCS, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCS{client: client}, nil
}

// Open implements Fetcher.
func (g *GCS) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	r, err := g.client.Bucket(loc.Bucket).Object(loc.Key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs read %s: %w", loc, err)
	}
	return r, nil
}

// Close releases the underlying client.
func (g *GCS) Close() error { return g.client.Close() }
