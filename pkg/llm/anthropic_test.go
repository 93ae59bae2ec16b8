package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestAnthropicClientGenerate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Fatalf("expected api key header")
		}
		if r.Header.Get("Anthropic-Version") == "" {
			t.Fatalf("expected version header")
		}
		if r.URL.Path != "/v1/messages" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.System != "be brief" {
			t.Fatalf("unexpected system prompt %q", req.System)
		}
		if req.MaxTokens != 4096 {
			t.Fatalf("expected default max tokens, got %d", req.MaxTokens)
		}
		fmt.Fprint(w, `{"model":"claude-test","content":[{"type":"text","text":"hello"}],"usage":{"input_tokens":10,"output_tokens":5}}`)
	}))
	defer server.Close()

	client := NewAnthropicClient(Config{
		APIURL: server.URL,
		APIKey: "test-key",
		Model:  "claude-test",
	})

	resp, err := client.Generate(context.Background(), Request{
		Prompt:       "hi",
		SystemPrompt: "be brief",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Content != "hello" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
}

func TestAnthropicClientGenerate_RetriesOn429(t *testing.T) {
	t.Parallel()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"model":"claude-test","content":[{"type":"text","text":"ok"}],"usage":{"input_tokens":1,"output_tokens":1}}`)
	}))
	defer server.Close()

	client := NewAnthropicClient(Config{APIURL: server.URL, Model: "claude-test"})
	resp, err := client.Generate(context.Background(), Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Content != "ok" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}
