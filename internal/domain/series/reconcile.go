// Package series derives the forecast anchor from a request's price histories.
package series

import "github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"

// Defaults used when neither history carries a usable year.
const (
	DefaultAnchorYear  = 2024
	DefaultAnchorPrice = 1_000_000.0
	DefaultMinYear     = 2012
	DefaultMaxYear     = 2024
)

// Source names the history an anchor was taken from.
type Source string

// Anchor sources, in order of preference.
const (
	SourcePredicted Source = "predicted"
	SourceActual    Source = "actual"
	SourceDefault   Source = "default"
)

// Anchor is the reference point every forecast starts from, plus the year range
// used to normalize forecast years.
type Anchor struct {
	Year    int
	Price   float64
	MinYear int
	MaxYear int
	Source  Source
}

// Reconcile picks the anchor from the predicted history when it has points,
// else from the actual history, else from the defaults. The anchor year is the
// latest year of the chosen history while the anchor price is its most recently
// inserted price; the two need not belong to the same pair.
func Reconcile(actual, predicted model.PriceSeries) Anchor {
	if a, ok := anchorFrom(predicted, SourcePredicted); ok {
		return a
	}
	if a, ok := anchorFrom(actual, SourceActual); ok {
		return a
	}
	return Anchor{
		Year:    DefaultAnchorYear,
		Price:   DefaultAnchorPrice,
		MinYear: DefaultMinYear,
		MaxYear: DefaultMaxYear,
		Source:  SourceDefault,
	}
}

func anchorFrom(s model.PriceSeries, src Source) (Anchor, bool) {
	minYear, maxYear, ok := s.YearRange()
	if !ok {
		return Anchor{}, false
	}
	last, _ := s.Last()
	return Anchor{
		Year:    maxYear,
		Price:   last.Price,
		MinYear: minYear,
		MaxYear: maxYear,
		Source:  src,
	}, true
}
