package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Client is a non-streaming text generation capability.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Request describes one generation call.
type Request struct {
	Prompt       string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
}

// Response carries the generated content plus provenance.
type Response struct {
	Content  string
	Model    string
	Provider string
	Usage    Usage
}

// Usage reports token consumption for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

const maxRetries = 3

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// doWithRetry executes an HTTP request with exponential backoff on transient
// errors. The request is rebuilt on each attempt because the body reader is
// consumed by the transport.
func doWithRetry(ctx context.Context, client *http.Client, build func() (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			if resp != nil {
				if ra := resp.Header.Get("Retry-After"); ra != "" {
					if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 && secs <= 120 {
						backoff = time.Duration(secs) * time.Second
					}
				}
				resp.Body.Close()
			}
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
		var req *http.Request
		req, err = build()
		if err != nil {
			return nil, err
		}
		resp, err = client.Do(req)
		if err != nil {
			if !isRetryableError(err) {
				return nil, err
			}
			continue
		}
		if !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}
