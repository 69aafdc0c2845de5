// Package mlclient is a Predictor backed by a remote regression service.
//
// The service accepts POST {base}/predict with the four step features in
// model column order and answers {"log_price": L}, where L = log(1 + price).
// GET {base}/health answers 200 once a model is loaded.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/predictor"
	"github.com/Darkwolf007/GeoDashboardApp/pkg/metrics"
)

const defaultTimeout = 2 * time.Second

// ErrBadResponse is returned when the service answers with an unusable body.
var ErrBadResponse = errors.New("bad predictor response")

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Columns  []string   `json:"columns"`
	Features [4]float64 `json:"features"`
}

// PredictResponse is the body returned by POST /predict.
type PredictResponse struct {
	LogPrice *float64 `json:"log_price"`
}

// HTTPPredictor calls a remote model over HTTP.
type HTTPPredictor struct {
	baseURL string
	client  *http.Client
}

// New creates a predictor for baseURL. Every call is bounded by timeout.
func New(baseURL string, timeout time.Duration) *HTTPPredictor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPPredictor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Predict implements predictor.Predictor. Any non-200 answer is an error,
// including a 503: only Health reports predictor.ErrUnavailable, and only at
// startup does that select the fallback.
func (c *HTTPPredictor) Predict(ctx context.Context, f predictor.Features) (float64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPredictorLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	body, err := json.Marshal(PredictRequest{Columns: predictor.FeatureNames[:], Features: f.Vector()})
	if err != nil {
		return 0, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("predictor request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("predictor returned status: %d", resp.StatusCode)
	}

	var out PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	if out.LogPrice == nil {
		return 0, fmt.Errorf("%w: missing log_price", ErrBadResponse)
	}
	if math.IsNaN(*out.LogPrice) || math.IsInf(*out.LogPrice, 0) {
		return 0, fmt.Errorf("%w: non-finite log_price", ErrBadResponse)
	}
	return *out.LogPrice, nil
}

// ID implements predictor.Identifier.
func (c *HTTPPredictor) ID() string {
	return "remote/" + c.baseURL
}

// Health checks that the service is reachable and has a model loaded.
func (c *HTTPPredictor) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", predictor.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned status %d", predictor.ErrUnavailable, resp.StatusCode)
	}
	return nil
}
