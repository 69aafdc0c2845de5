package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PricePoint is one (year, price) pair of a price history.
type PricePoint struct {
	Year  int
	Price float64
}

// PriceSeries is a price history in the order its years were supplied.
//
// On the wire it is a JSON object mapping year strings to prices. Decoding keeps
// document order, silently drops keys that are not plain ASCII digit strings and
// accepts prices given either as numbers or as numeric strings.
type PriceSeries []PricePoint

// Len reports the number of points.
func (s PriceSeries) Len() int { return len(s) }

// Prices returns the prices in insertion order.
func (s PriceSeries) Prices() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Price
	}
	return out
}

// Last returns the most recently inserted point.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[len(s)-1], true
}

// YearRange returns the smallest and largest year in the series.
func (s PriceSeries) YearRange() (minYear, maxYear int, ok bool) {
	if len(s) == 0 {
		return 0, 0, false
	}
	minYear, maxYear = s[0].Year, s[0].Year
	for _, p := range s[1:] {
		if p.Year < minYear {
			minYear = p.Year
		}
		if p.Year > maxYear {
			maxYear = p.Year
		}
	}
	return minYear, maxYear, true
}

// With returns a copy of s with year set to price. An existing year keeps its
// position and takes the new price, as a repeated key in a JSON object would.
func (s PriceSeries) With(year int, price float64) PriceSeries {
	out := make(PriceSeries, len(s), len(s)+1)
	copy(out, s)
	for i := range out {
		if out[i].Year == year {
			out[i].Price = price
			return out
		}
	}
	return append(out, PricePoint{Year: year, Price: price})
}

// ParseYear reports whether key is a year key: a non-empty string made only of
// ASCII digits that fits in an int.
func ParseYear(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return 0, false
		}
	}
	year, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return year, true
}

// UnmarshalJSON decodes a year -> price object preserving key order.
func (s *PriceSeries) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSeries, err)
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: expected an object of year to price", ErrInvalidSeries)
	}

	var out PriceSeries
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSeries, err)
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSeries, err)
		}

		year, ok := ParseYear(key)
		if !ok {
			continue
		}
		price, err := parsePrice(raw)
		if err != nil {
			return fmt.Errorf("%w: year %s: %w", ErrInvalidSeries, key, err)
		}
		out = out.With(year, price)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSeries, err)
	}

	*s = out
	return nil
}

// MarshalJSON encodes the series as a year -> price object in series order.
func (s PriceSeries) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		price, err := json.Marshal(p.Price)
		if err != nil {
			return nil, err
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.Itoa(p.Year))
		buf.WriteString(`":`)
		buf.Write(price)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func parsePrice(raw json.RawMessage) (float64, error) {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}
	switch val := v.(type) {
	case json.Number:
		return val.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(val), 64)
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("price must be a number, got %s", string(raw))
	}
}
