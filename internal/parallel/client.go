// Package parallel is a client for the Parallel Web API (https://docs.parallel.ai).
// It covers the beta Search and Extract endpoints: one best-effort HTTP round
// trip per call, no retries, no caching.
package parallel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	// DefaultBaseURL is the beta API root.
	DefaultBaseURL = "https://api.parallel.ai/v1beta"

	// BetaHeader opts the request into the search/extract beta surface.
	BetaHeader = "search-extract-2025-10-10"

	// EnvAPIKey is the environment variable consulted when the client has
	// no explicit key.
	EnvAPIKey = "PARALLEL_API_KEY"

	// DefaultTimeout is the fixed per-call transport ceiling.
	DefaultTimeout = 60 * time.Second
)

// Client calls the Parallel API. The zero value is not usable; use NewClient.
// Concurrent use is safe: calls share no mutable state.
type Client struct {
	APIKey  string // optional override; falls back to EnvAPIKey per call
	BaseURL string // overridable for testing
	client  *http.Client
}

// NewClient creates a client. apiKey may be empty, in which case each call
// resolves the key from the environment.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// resolveKey returns the credential for this call: explicit override first,
// then the environment. Environment lookup is cheap, so nothing is cached.
func (c *Client) resolveKey() (string, error) {
	if c.APIKey != "" {
		return c.APIKey, nil
	}
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key, nil
	}
	return "", ErrNoAPIKey
}

// postJSON issues one POST and returns the raw 200 body. A missing credential
// fails before any network I/O; a non-200 status returns *APIError with the
// body verbatim.
func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	key, err := c.resolveKey()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("parallel: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parallel: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", key)
	req.Header.Set("parallel-beta", BetaHeader)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("parallel: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parallel: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}
