package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIClientGenerate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Fatalf("expected auth header")
		}
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Fatalf("expected system + user messages, got %+v", req.Messages)
		}
		if req.MaxTokens != 800 {
			t.Fatalf("unexpected max_tokens %d", req.MaxTokens)
		}
		fmt.Fprint(w, `{"model":"gpt-test","choices":[{"message":{"content":"hello"}}],"usage":{"prompt_tokens":12,"completion_tokens":3,"total_tokens":15}}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(Config{
		APIURL: server.URL,
		APIKey: "test-key",
		Model:  "gpt-test",
	})

	resp, err := client.Generate(context.Background(), Request{
		Prompt:       "hi",
		SystemPrompt: "be brief",
		MaxTokens:    800,
		Temperature:  0.4,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Content != "hello" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if resp.Provider != "openai" {
		t.Fatalf("unexpected provider %q", resp.Provider)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
}

func TestOpenAIClientGenerate_NoChoices(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"model":"gpt-test","choices":[]}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(Config{APIURL: server.URL, Model: "gpt-test"})
	if _, err := client.Generate(context.Background(), Request{Prompt: "hi"}); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}

func TestOpenAIClientGenerate_RequiresModel(t *testing.T) {
	t.Parallel()

	client := NewOpenAIClient(Config{})
	if _, err := client.Generate(context.Background(), Request{Prompt: "hi"}); err == nil {
		t.Fatalf("expected error for missing model")
	}
}
