package searchapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://www.searchapi.io/api/v1/search"

// minRequestInterval keeps consecutive calls under the provider's
// per-key rate limit.
const minRequestInterval = 100 * time.Millisecond

const maxRetries = 3

// Searcher executes one search against a named engine and returns the raw
// provider payload. Engine-specific result extraction happens downstream.
type Searcher interface {
	Search(ctx context.Context, engine string, params map[string]string) (json.RawMessage, error)
}

// Client calls the SearchAPI.io aggregation API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates a SearchAPI.io client.
func NewClient(apiKey, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("searchapi key is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(minRequestInterval), 1),
	}, nil
}

// Search executes a query against the given engine. Params are passed through
// as query parameters alongside the engine name and API key.
func (c *Client) Search(ctx context.Context, engine string, params map[string]string) (json.RawMessage, error) {
	if strings.TrimSpace(engine) == "" {
		return nil, fmt.Errorf("search engine is required")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	values := url.Values{}
	values.Set("engine", engine)
	values.Set("api_key", c.apiKey)
	for key, value := range params {
		if value != "" {
			values.Set(key, value)
		}
	}
	target := c.baseURL + "?" + values.Encode()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("create searchapi request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("searchapi request failed: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			lastErr = fmt.Errorf("searchapi rate limited (engine %s)", engine)
			continue
		}
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("searchapi returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read searchapi response: %w", err)
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("searchapi returned invalid JSON (engine %s)", engine)
		}
		return json.RawMessage(data), nil
	}
	return nil, fmt.Errorf("searchapi request exhausted retries: %w", lastErr)
}
