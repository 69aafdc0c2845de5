// Package loadtest drives a running geodash server with generated forecast
// requests and checks the responses.
package loadtest

import (
	"errors"
	"fmt"
	"time"
)

// Error constants.
var (
	ErrInvalidConfig = errors.New("invalid load test config")
	ErrUnhealthy     = errors.New("service unhealthy")
	ErrVerification  = errors.New("verification failed")
)

// Config holds configuration for a load test run.
type Config struct {
	BaseURL     string        // Base URL of the service
	NumRequests int           // Number of requests to send
	Unique      int           // Number of distinct requests; the rest are repeats
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	Seed        uint64        // Seed for request generation
	Verbose     bool          // Log every failed request
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.NumRequests <= 0 || c.Workers <= 0:
		return fmt.Errorf("%w: requests and workers must be positive", ErrInvalidConfig)
	case c.Unique <= 0 || c.Unique > c.NumRequests:
		return fmt.Errorf("%w: unique must be in [1, requests]", ErrInvalidConfig)
	}
	return nil
}

// Stats holds run statistics.
type Stats struct {
	Sent         int
	Forecasts    int
	ErrorPayload int
	Failed       int
	Mismatched   int
	Invalid      int
	Duration     time.Duration
}
