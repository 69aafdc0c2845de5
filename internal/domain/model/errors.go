package model

import "errors"

// Sentinel errors for request decoding and validation.
var (
	ErrInvalidSeries  = errors.New("invalid price series")
	ErrInvalidRequest = errors.New("invalid forecast request")
)
