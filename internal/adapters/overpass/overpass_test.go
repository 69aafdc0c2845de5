package overpass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "version": 0.6,
  "generator": "Overpass API",
  "osm3s": {"timestamp_osm_base": "2024-05-01T10:00:00Z"},
  "elements": [
    {"type": "node", "id": 1, "lat": 25.2, "lon": 55.27, "tags": {"amenity": "hospital"}},
    {"type": "node", "id": 2, "lat": 25.2, "lon": 55.28, "tags": {"amenity": "clinic"}},
    {"type": "node", "id": 3, "lat": 25.2, "lon": 55.29, "tags": {"railway": "station", "station": "subway"}},
    {"type": "way", "id": 10, "tags": {"leisure": "park"}},
    {"type": "way", "id": 11, "tags": {"highway": "motorway"}},
    {"type": "node", "id": 4, "lat": 25.2, "lon": 55.3, "tags": {"shop": "bakery"}}
  ]
}`

func TestClassify(t *testing.T) {
	cases := []struct {
		tags map[string]string
		kind string
		ok   bool
	}{
		{map[string]string{"amenity": "pub"}, KindBar, true},
		{map[string]string{"amenity": "college"}, KindUniversity, true},
		{map[string]string{"landuse": "cemetery"}, KindCemetery, true},
		{map[string]string{"amenity": "grave_yard"}, KindCemetery, true},
		{map[string]string{"tourism": "museum"}, KindPOI, true},
		{map[string]string{"office": "company"}, KindOffice, true},
		{map[string]string{"highway": "residential"}, "", false},
		{map[string]string{"railway": "station"}, "", false},
		{nil, "", false},
	}
	for _, tc := range cases {
		kind, ok := Classify(tc.tags)
		assert.Equal(t, tc.ok, ok, "%v", tc.tags)
		assert.Equal(t, tc.kind, kind, "%v", tc.tags)
	}
}

func TestAreaValidate(t *testing.T) {
	assert.NoError(t, Area{Lat: 25.2, Lon: 55.27, RadiusM: 1000}.Validate())
	assert.ErrorIs(t, Area{Lat: 91, Lon: 0, RadiusM: 10}.Validate(), ErrInvalidArea)
	assert.ErrorIs(t, Area{Lat: 0, Lon: -181, RadiusM: 10}.Validate(), ErrInvalidArea)
	assert.ErrorIs(t, Area{Lat: 0, Lon: 0, RadiusM: 0}.Validate(), ErrInvalidArea)
	assert.ErrorIs(t, Area{Lat: 0, Lon: 0, RadiusM: MaxRadiusMeters + 1}.Validate(), ErrInvalidArea)
}

func TestBuildQuery(t *testing.T) {
	q := BuildQuery(Area{Lat: 25.2, Lon: 55.27, RadiusM: 800}, 25*time.Second)
	assert.True(t, strings.HasPrefix(q, "[out:json][timeout:25];"))
	assert.Contains(t, q, `nwr["leisure"="park"](around:800,25.200000,55.270000);`)
	assert.True(t, strings.HasSuffix(q, "out tags;\n"))
}

func TestClient_CountAmenities(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.FormValue("data")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	counter, err := c.CountAmenities(context.Background(), Area{Lat: 25.2, Lon: 55.27, RadiusM: 1000})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "around:1000")
	assert.Len(t, counter, len(Kinds))
	assert.Equal(t, 2.0, counter[KindHospital])
	assert.Equal(t, 1.0, counter[KindMetro])
	assert.Equal(t, 1.0, counter[KindPark])
	assert.Equal(t, 1.0, counter[KindHighway])
	assert.Equal(t, 0.0, counter[KindSchool])
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.CountAmenities(context.Background(), Area{Lat: 1, Lon: 1, RadiusM: 100})
	assert.ErrorIs(t, err, ErrQuery)
}

func TestClient_InvalidArea(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)
	_, err := c.CountAmenities(context.Background(), Area{Lat: 100, Lon: 0, RadiusM: 100})
	assert.ErrorIs(t, err, ErrInvalidArea)
}

func TestClient_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.CountAmenities(ctx, Area{Lat: 1, Lon: 1, RadiusM: 100})
	assert.ErrorIs(t, err, context.Canceled)
}
