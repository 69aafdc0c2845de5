package predictor

import "errors"

// Sentinel errors.
var (
	// ErrUnavailable means no model is loaded; callers fall back.
	ErrUnavailable = errors.New("predictor unavailable")
	// ErrInvalidArtifact means a model artifact could not be decoded or validated.
	ErrInvalidArtifact = errors.New("invalid model artifact")
)
