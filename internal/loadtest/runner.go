package loadtest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/logger"
)

// Run executes a complete load test and returns its statistics. It fails with
// ErrVerification when any forecast breaks an invariant or two identical
// requests were answered differently.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (Stats, error) {
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}
	if log == nil {
		log = logger.Nop()
	}
	start := time.Now()
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting geodash load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.NumRequests),
		logger.Int("unique", cfg.Unique),
		logger.Int("workers", cfg.Workers),
	)

	if err := checkServiceHealth(ctx, client); err != nil {
		return Stats{}, err
	}

	requests := generateRequests(cfg)
	results := submitRequests(ctx, cfg, client, requests)

	stats := verifyResults(ctx, cfg, log, results)
	stats.Duration = time.Since(start)

	log.Info(ctx, "final statistics",
		logger.Int("sent", stats.Sent),
		logger.Int("forecasts", stats.Forecasts),
		logger.Int("errorPayloads", stats.ErrorPayload),
		logger.Int("failed", stats.Failed),
		logger.Int("invalid", stats.Invalid),
		logger.Int("mismatched", stats.Mismatched),
		logger.Duration("duration", stats.Duration),
	)

	if stats.Invalid > 0 || stats.Mismatched > 0 {
		return stats, fmt.Errorf("%w: %d invalid, %d mismatched", ErrVerification, stats.Invalid, stats.Mismatched)
	}
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	resp, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

type outcome struct {
	key    int // index of the distinct request this one repeats
	result predictResult
	err    error
}

// submitRequests sends every request through a pool of cfg.Workers workers.
func submitRequests(ctx context.Context, cfg *Config, client *HTTPClient, requests []model.ForecastRequest) []outcome {
	out := make([]outcome, len(requests))
	jobs := make(chan int, cfg.Workers*2)

	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := client.predict(ctx, requests[i])
				out[i] = outcome{key: i % cfg.Unique, result: res, err: err}
			}
		}()
	}

	for i := range requests {
		select {
		case <-ctx.Done():
			for j := i; j < len(requests); j++ {
				out[j] = outcome{key: j % cfg.Unique, err: ctx.Err()}
			}
			close(jobs)
			wg.Wait()
			return out
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return out
}
