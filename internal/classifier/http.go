package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"
)

const defaultClassifyTimeout = 30 * time.Second

// HTTPClassifier calls a text-classification inference endpoint over HTTP.
// The endpoint wraps a single loaded model that is not safely concurrently
// invocable, so calls are serialized through a weighted semaphore of one.
type HTTPClassifier struct {
	url    string
	client *http.Client
	sem    *semaphore.Weighted
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Probability float64 `json:"probability"`
}

// NewHTTPClassifier builds a classifier against the given inference URL.
func NewHTTPClassifier(url string) (*HTTPClassifier, error) {
	if url == "" {
		return nil, fmt.Errorf("classifier url required")
	}
	return &HTTPClassifier{
		url:    url,
		client: &http.Client{Timeout: defaultClassifyTimeout},
		sem:    semaphore.NewWeighted(1),
	}, nil
}

// Classify posts text to the inference endpoint and returns the raw class-1
// probability.
func (c *HTTPClassifier) Classify(ctx context.Context, text string) (float64, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer c.sem.Release(1)

	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("classifier unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, b)
	}

	var out classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode classifier response: %w", err)
	}
	if out.Probability < 0 || out.Probability > 1 {
		return 0, fmt.Errorf("classifier probability out of range: %v", out.Probability)
	}
	return out.Probability, nil
}
