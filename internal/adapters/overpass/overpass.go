// Package overpass counts amenities around a point using the OpenStreetMap
// Overpass API.
package overpass

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/serjvanilla/go-overpass"

	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/metrics"
)

const (
	defaultTimeout = 25 * time.Second
	maxParallel    = 2
	// MaxRadiusMeters bounds a single query.
	MaxRadiusMeters = 5_000.0
)

var (
	// ErrInvalidArea is returned for out-of-range coordinates or radius.
	ErrInvalidArea = errors.New("invalid search area")
	// ErrQuery is returned when Overpass cannot answer.
	ErrQuery = errors.New("overpass query failed")
)

// Area is a circle on the map.
type Area struct {
	Lat     float64
	Lon     float64
	RadiusM float64
}

// Validate checks coordinate and radius ranges.
func (a Area) Validate() error {
	switch {
	case a.Lat < -90 || a.Lat > 90 || a.Lat != a.Lat:
		return fmt.Errorf("%w: latitude out of range [-90, 90]", ErrInvalidArea)
	case a.Lon < -180 || a.Lon > 180 || a.Lon != a.Lon:
		return fmt.Errorf("%w: longitude out of range [-180, 180]", ErrInvalidArea)
	case !(a.RadiusM > 0 && a.RadiusM <= MaxRadiusMeters):
		return fmt.Errorf("%w: radius must be in (0, %.0f] meters", ErrInvalidArea, MaxRadiusMeters)
	}
	return nil
}

// Client queries Overpass and classifies the returned elements.
type Client struct {
	client  *overpass.Client
	timeout time.Duration
}

// NewClient creates a client for endpoint, e.g.
// https://overpass-api.de/api/interpreter.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}
	client := overpass.NewWithSettings(endpoint, maxParallel, httpClient)
	return &Client{client: &client, timeout: timeout}
}

// CountAmenities returns how many elements of every known amenity kind lie
// within the area. Kinds with no matches are present with a zero count.
func (c *Client) CountAmenities(ctx context.Context, area Area) (model.AmenityCounter, error) {
	if err := area.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	result, err := c.execute(ctx, BuildQuery(area, c.timeout))
	if err != nil {
		metrics.RecordAmenityQuery("error", msSince(start))
		return nil, err
	}

	counter := make(model.AmenityCounter, len(Kinds))
	for _, k := range Kinds {
		counter[k] = 0
	}
	add := func(tags map[string]string) {
		if kind, ok := Classify(tags); ok {
			counter[kind]++
		}
	}
	for _, n := range result.Nodes {
		add(n.Tags)
	}
	for _, w := range result.Ways {
		add(w.Tags)
	}
	for _, r := range result.Relations {
		add(r.Tags)
	}

	metrics.RecordAmenityQuery("ok", msSince(start))
	return counter, nil
}

// execute runs the query, giving up when ctx is done. The underlying client
// has no context support, so an abandoned query finishes in the background
// bounded by the HTTP timeout.
func (c *Client) execute(ctx context.Context, query string) (*overpass.Result, error) {
	type outcome struct {
		res overpass.Result
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		res, err := c.client.Query(query)
		ch <- outcome{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrQuery, ctx.Err())
	case out := <-ch:
		if out.err != nil {
			return nil, fmt.Errorf("%w: %w", ErrQuery, out.err)
		}
		return &out.res, nil
	}
}

// BuildQuery renders the Overpass QL query for area.
func BuildQuery(area Area, timeout time.Duration) string {
	around := fmt.Sprintf("(around:%.0f,%.6f,%.6f)", area.RadiusM, area.Lat, area.Lon)

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", int(timeout.Seconds()))
	for _, sel := range selectors {
		fmt.Fprintf(&b, "  %s%s;\n", sel, around)
	}
	b.WriteString(");\nout tags;\n")
	return b.String()
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
