package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"
)

// HTTPClient wraps http.Client with a per-request timeout.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Get performs a GET request against path.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// predictResult is either a forecast or the service's error payload.
type predictResult struct {
	Forecast []forecastPoint `json:"forecast"`
	Error    string          `json:"error"`
}

type forecastPoint struct {
	Year  string  `json:"year"`
	Price float64 `json:"price"`
}

// predict posts one request and decodes the 200 body.
func (c *HTTPClient) predict(ctx context.Context, req model.ForecastRequest) (predictResult, error) { //nolint:gocritic // hugeParam: sent by value
	resp, err := c.Post(ctx, "/predict", req)
	if err != nil {
		return predictResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return predictResult{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return predictResult{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var out predictResult
	if err := json.Unmarshal(body, &out); err != nil {
		return predictResult{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
