package textsim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client calls an external text-similarity service over HTTP. The service
// compares two free-text passages and returns a similarity in [0, 1]; any
// transport or protocol failure is reported as an error so the caller can
// degrade the description dimension.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// similarityRequest is the request body for the similarity endpoint
type similarityRequest struct {
	TextA string `json:"text_a"`
	TextB string `json:"text_b"`
}

// similarityResponse is the response body from the similarity endpoint
type similarityResponse struct {
	Similarity float64 `json:"similarity"`
}

// NewClient creates a text-similarity client. The timeout is a hard upper
// bound on each call regardless of the caller's context.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		apiKey:     apiKey,
	}
}

// Similarity returns the similarity of two passages in [0, 1]
func (c *Client) Similarity(ctx context.Context, a, b string) (float64, error) {
	requestBody, err := json.Marshal(similarityRequest{TextA: a, TextB: b})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("similarity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("similarity service returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed similarityResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("failed to decode similarity response: %w", err)
	}

	if parsed.Similarity < 0 || parsed.Similarity > 1 {
		return 0, fmt.Errorf("similarity out of range: %f", parsed.Similarity)
	}
	return parsed.Similarity, nil
}
