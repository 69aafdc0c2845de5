package artifact

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		uri  string
		want Location
	}{
		{"weighted.csv", Location{Scheme: SchemeFile, Key: "weighted.csv"}},
		{"  /data/model.yaml ", Location{Scheme: SchemeFile, Key: "/data/model.yaml"}},
		{"file:///data/weighted.csv", Location{Scheme: SchemeFile, Key: "/data/weighted.csv"}},
		{"s3://models/prod/linear.yaml", Location{Scheme: SchemeS3, Bucket: "models", Key: "prod/linear.yaml"}},
		{"GS://scores/weighted.csv", Location{Scheme: SchemeGCS, Bucket: "scores", Key: "weighted.csv"}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.uri)
		require.NoError(t, err, tc.uri)
		assert.Equal(t, tc.want, got, tc.uri)
	}

	for _, bad := range []string{"", "s3://bucket-only", "s3:///key-only"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidURI, bad)
	}
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "s3://b/k.csv", Location{Scheme: SchemeS3, Bucket: "b", Key: "k.csv"}.String())
	assert.Equal(t, "a/b.csv", Location{Scheme: SchemeFile, Key: "a/b.csv"}.String())
}

func TestRouterLocal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weighted.csv")
	require.NoError(t, os.WriteFile(path, []byte("area,zone_index,rooms_en,weighted_score\n"), 0o600))

	r := NewRouter()
	rc, err := r.Opener(path)(context.Background())
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "area,"))

	_, err = r.Open(context.Background(), filepath.Join(dir, "missing.csv"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

type stubFetcher struct{ opened []Location }

func (s *stubFetcher) Open(_ context.Context, loc Location) (io.ReadCloser, error) {
	s.opened = append(s.opened, loc)
	return io.NopCloser(strings.NewReader("ok")), nil
}

func TestRouterSchemes(t *testing.T) {
	stub := &stubFetcher{}
	r := NewRouter(WithFetcher(SchemeS3, stub))

	rc, err := r.Open(context.Background(), "s3://models/linear.yaml")
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Len(t, stub.opened, 1)
	assert.Equal(t, "models", stub.opened[0].Bucket)

	_, err = r.Open(context.Background(), "gs://scores/weighted.csv")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	_, err = r.Open(context.Background(), "ftp://host/file")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}
