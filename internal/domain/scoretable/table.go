// Package scoretable holds the pre-computed desirability score of every
// (area, zone, room type) combination and the rules for combining a baseline
// score with an amenity adjustment.
package scoretable

import (
	"cmp"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"slices"
	"strings"
)

// Key identifies one score table entry. Area and room labels are compared
// exactly after trimming surrounding whitespace.
type Key struct {
	Area  string
	Zone  int
	Rooms string
}

// NewKey builds a Key, trimming the text fields.
func NewKey(area string, zone int, rooms string) Key {
	return Key{Area: strings.TrimSpace(area), Zone: zone, Rooms: strings.TrimSpace(rooms)}
}

// Row is one score table entry as read from a source.
type Row struct {
	Key   Key
	Score float64
}

// Source yields score table rows in source order.
type Source interface {
	Rows(ctx context.Context) ([]Row, error)
}

// Table is an immutable score lookup. It is safe for concurrent use.
type Table struct {
	scores map[Key]float64
	digest string
}

// New builds a Table. When a key repeats, the first row wins.
func New(rows []Row) *Table {
	t := &Table{scores: make(map[Key]float64, len(rows))}
	for _, r := range rows {
		k := NewKey(r.Key.Area, r.Key.Zone, r.Key.Rooms)
		if _, seen := t.scores[k]; seen {
			continue
		}
		t.scores[k] = r.Score
	}
	t.digest = digest(t.scores)
	return t
}

// digest hashes the table content in key order, so tables with the same
// entries share a digest regardless of source order or duplicates.
func digest(scores map[Key]float64) string {
	keys := make([]Key, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		return cmp.Or(cmp.Compare(a.Area, b.Area), cmp.Compare(a.Zone, b.Zone), cmp.Compare(a.Rooms, b.Rooms))
	})

	h := sha256.New()
	var buf [8]byte
	for _, k := range keys {
		h.Write([]byte(k.Area))
		h.Write([]byte{0})
		binary.BigEndian.PutUint64(buf[:], uint64(int64(k.Zone)))
		h.Write(buf[:])
		h.Write([]byte(k.Rooms))
		h.Write([]byte{0})
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(scores[k]))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Load reads every row from src and builds a Table.
func Load(ctx context.Context, src Source) (*Table, error) {
	rows, err := src.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return New(rows), nil
}

// Lookup returns the baseline score for k.
func (t *Table) Lookup(k Key) (float64, bool) {
	if t == nil {
		return 0, false
	}
	s, ok := t.scores[NewKey(k.Area, k.Zone, k.Rooms)]
	return s, ok
}

// Len returns the number of distinct keys.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.scores)
}

// Digest identifies the table content. Tables with equal entries share it.
func (t *Table) Digest() string {
	if t == nil {
		return digest(nil)
	}
	return t.digest
}

// Compose combines a baseline score with an amenity adjustment.
//
//   - baseline found, no adjustment: the baseline as-is
//   - baseline found, adjustment:    baseline + adjustment clamped to [0, 1]
//   - no baseline:                   the adjustment alone, unclamped
func Compose(baseline float64, found bool, adjustment float64) float64 {
	switch {
	case found && adjustment == 0:
		return baseline
	case found:
		return clamp01(baseline + adjustment)
	default:
		return adjustment
	}
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if !(v >= 0) {
		return 0
	}
	return v
}
