package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// clientConfig carries the knobs shared by all provider clients.
type clientConfig struct {
	httpClient *http.Client
	baseURL    string
	retry      RetryConfig
	limit      int
	apiHost    string
}

// Option configures a provider client.
type Option func(*clientConfig)

// WithHTTPClient sets the HTTP client, including its timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) { cfg.httpClient = c }
}

// WithBaseURL overrides the provider base URL. Mainly for tests and
// API-compatible mirrors.
func WithBaseURL(u string) Option {
	return func(cfg *clientConfig) { cfg.baseURL = u }
}

// WithRetry overrides the retry policy.
func WithRetry(r RetryConfig) Option {
	return func(cfg *clientConfig) { cfg.retry = r }
}

// WithLimit caps how many results a search returns.
func WithLimit(n int) Option {
	return func(cfg *clientConfig) {
		if n > 0 {
			cfg.limit = n
		}
	}
}

// newClientConfig builds the default config for a client.
func newClientConfig(baseURL string, limit int, opts ...Option) clientConfig {
	cfg := clientConfig{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		retry:      DefaultRetry,
		limit:      limit,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// getJSON performs one GET and decodes the response body, translating
// failures into the taxonomy. A non-200 status classifies by code; an
// undecodable body is a parse failure.
func (cfg *clientConfig) getJSON(ctx context.Context, provider, path string, params url.Values, headers map[string]string, out any) error {
	u := cfg.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := cfg.httpClient.Do(req)
	if err != nil {
		return transportError(provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return statusError(provider, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(provider, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return parseError(provider, "invalid JSON response", err)
	}
	return nil
}
