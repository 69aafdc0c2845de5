package service

import "errors"

// Sentinel errors returned by the Service.
var (
	// ErrPipeline wraps every failure of the forecast computation, including
	// recovered panics.
	ErrPipeline = errors.New("forecast failed")
	// ErrScoreNotFound is returned when no baseline score exists for a key.
	ErrScoreNotFound = errors.New("score not found")
	// ErrAmenitiesUnavailable is returned when no Overpass endpoint is configured.
	ErrAmenitiesUnavailable = errors.New("amenity lookup not configured")
)
