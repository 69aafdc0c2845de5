package forecast

import "errors"

// Sentinel errors.
var (
	// ErrNonFinite means a step produced a price that cannot be represented.
	ErrNonFinite = errors.New("forecast produced a non-finite price")
	// ErrPredict wraps a failure of the configured model.
	ErrPredict = errors.New("predictor failed")
)
