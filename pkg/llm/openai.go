package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

type OpenAIClient struct {
	client  *http.Client
	limiter *rate.Limiter
	apiKey  string
	apiURL  string
	model   string
}

func NewOpenAIClient(cfg Config) *OpenAIClient {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1"
	}
	return &OpenAIClient{
		client:  &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(rate.Every(minRequestInterval), 1),
		apiKey:  cfg.APIKey,
		apiURL:  apiURL,
		model:   cfg.Model,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, genReq Request) (Response, error) {
	if c.model == "" {
		return Response{}, errors.New("openai model is required")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return Response{}, err
	}

	messages := make([]openAIMessage, 0, 2)
	if genReq.SystemPrompt != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: genReq.SystemPrompt})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: genReq.Prompt})

	payload, err := json.Marshal(openAIRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   genReq.MaxTokens,
		Temperature: genReq.Temperature,
	})
	if err != nil {
		return Response{}, fmt.Errorf("openai: marshal request: %w", err)
	}

	resp, err := doWithRetry(ctx, c.client, func() (*http.Request, error) {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/chat/completions", bytes.NewReader(payload))
		if reqErr != nil {
			return nil, fmt.Errorf("openai: create request: %w", reqErr)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		return req, nil
	})
	if err != nil {
		return Response{}, fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return Response{}, fmt.Errorf("openai: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var decoded openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Response{}, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return Response{}, errors.New("openai: response contained no choices")
	}

	return Response{
		Content:  decoded.Choices[0].Message.Content,
		Model:    decoded.Model,
		Provider: "openai",
		Usage: Usage{
			InputTokens:  decoded.Usage.PromptTokens,
			OutputTokens: decoded.Usage.CompletionTokens,
			TotalTokens:  decoded.Usage.TotalTokens,
		},
	}, nil
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
