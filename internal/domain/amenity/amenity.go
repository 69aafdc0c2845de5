// Package amenity turns counts of nearby amenities into a signed adjustment of
// a location's desirability score.
package amenity

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"
)

// contributionScale multiplies every count * weight product.
const contributionScale = 0.1

// DefaultWeights returns the built-in weight table. Amenities that make a
// location more desirable carry positive weights.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"hospital":   0.07,
		"metro":      0.09,
		"school":     0.08,
		"university": 0.06,
		"park":       0.075,
		"office":     0.065,
		"poi":        0.05,
		"landfill":   -0.06,
		"prison":     -0.05,
		"highway":    -0.04,
		"bar":        -0.03,
		"cemetery":   -0.02,
	}
}

// Normalize lowercases name and strips spaces and underscores, so "Bus_Stop"
// and "bus stop" both become "busstop".
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if r == ' ' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Adjuster computes score adjustments from an amenity counter. It is immutable
// and safe for concurrent use.
type Adjuster struct {
	weights map[string]float64 // keyed by normalized name
}

// NewAdjuster builds an Adjuster over the default weights unless WithWeights
// replaces them.
func NewAdjuster(opts ...Option) *Adjuster {
	o := options{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(&o)
	}
	a := &Adjuster{weights: make(map[string]float64, len(o.weights))}
	for k, w := range o.weights {
		a.weights[Normalize(k)] += w
	}
	return a
}

// Weight returns the weight for a raw amenity name.
func (a *Adjuster) Weight(name string) (float64, bool) {
	w, ok := a.weights[Normalize(name)]
	return w, ok
}

// Kinds returns the normalized amenity names that carry a weight, sorted.
func (a *Adjuster) Kinds() []string {
	out := make([]string, 0, len(a.weights))
	for k := range a.weights {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Digest identifies the weight table. Adjusters with equal weights share it.
func (a *Adjuster) Digest() string {
	h := sha256.New()
	for _, k := range a.Kinds() {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatFloat(a.weights[k], 'g', -1, 64)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Adjust returns the sum of 0.1 * count * weight over every recognized amenity.
// Unrecognized names contribute nothing. Names are visited in sorted order so
// the floating-point sum does not depend on map iteration.
func (a *Adjuster) Adjust(counter model.AmenityCounter) float64 {
	if len(counter) == 0 {
		return 0
	}
	names := make([]string, 0, len(counter))
	for name := range counter {
		names = append(names, name)
	}
	sort.Strings(names)

	var adjustment float64
	for _, name := range names {
		if w, ok := a.weights[Normalize(name)]; ok {
			adjustment += contributionScale * counter[name] * w
		}
	}
	return adjustment
}

// Sum returns the raw total of all counts, recognized or not.
func Sum(counter model.AmenityCounter) float64 {
	names := make([]string, 0, len(counter))
	for name := range counter {
		names = append(names, name)
	}
	sort.Strings(names)

	var total float64
	for _, name := range names {
		total += counter[name]
	}
	return total
}
