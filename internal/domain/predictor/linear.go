package predictor

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

// KindLinear identifies a linear model artifact.
const KindLinear = "linear"

// linearArtifact is the YAML layout of a linear model:
//
//	kind: linear
//	features: [normalized_year, weighted_score, zone_index, pct_change]
//	intercept: 13.1
//	coefficients: [0.42, 1.3, 0.01, 0.8]
type linearArtifact struct {
	Kind         string    `yaml:"kind"`
	Version      string    `yaml:"version"`
	Features     []string  `yaml:"features"`
	Intercept    float64   `yaml:"intercept"`
	Coefficients []float64 `yaml:"coefficients"`
}

// Linear is a linear regression over the four step features, predicting log(1 + price).
type Linear struct {
	Version      string
	Intercept    float64
	Coefficients [4]float64
}

// NewLinear builds a Linear model from explicit parameters.
func NewLinear(intercept float64, coefficients [4]float64) *Linear {
	return &Linear{Intercept: intercept, Coefficients: coefficients}
}

// LoadLinear decodes and validates a linear model artifact.
func LoadLinear(r io.Reader) (*Linear, error) {
	var a linearArtifact
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}
	if a.Kind != KindLinear {
		return nil, fmt.Errorf("%w: unsupported kind %q", ErrInvalidArtifact, a.Kind)
	}
	if len(a.Features) != len(FeatureNames) {
		return nil, fmt.Errorf("%w: want %d features, got %d", ErrInvalidArtifact, len(FeatureNames), len(a.Features))
	}
	for i, name := range a.Features {
		if name != FeatureNames[i] {
			return nil, fmt.Errorf("%w: feature %d is %q, want %q", ErrInvalidArtifact, i, name, FeatureNames[i])
		}
	}
	if len(a.Coefficients) != len(FeatureNames) {
		return nil, fmt.Errorf("%w: want %d coefficients, got %d", ErrInvalidArtifact, len(FeatureNames), len(a.Coefficients))
	}

	m := &Linear{Version: a.Version, Intercept: a.Intercept}
	copy(m.Coefficients[:], a.Coefficients)
	if !finite(m.Intercept) {
		return nil, fmt.Errorf("%w: intercept is not finite", ErrInvalidArtifact)
	}
	for i, c := range m.Coefficients {
		if !finite(c) {
			return nil, fmt.Errorf("%w: coefficient %d is not finite", ErrInvalidArtifact, i)
		}
	}
	return m, nil
}

// Predict implements Predictor.
func (m *Linear) Predict(_ context.Context, f Features) (float64, error) {
	v := f.Vector()
	out := m.Intercept
	for i, c := range m.Coefficients {
		out += c * v[i]
	}
	return out, nil
}

// ID implements Identifier. It names the artifact version and hashes the
// parameters, so a retrained model with an unchanged version still differs.
func (m *Linear) ID() string {
	h := sha256.New()
	var buf [8]byte
	for _, v := range append([]float64{m.Intercept}, m.Coefficients[:]...) {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return "linear/" + m.Version + "/" + hex.EncodeToString(h.Sum(nil))[:16]
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
