package searchapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestClientSearch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("engine") != "google" {
			t.Fatalf("unexpected engine %q", q.Get("engine"))
		}
		if q.Get("api_key") != "test-key" {
			t.Fatalf("missing api key")
		}
		if q.Get("q") != "meal kit" {
			t.Fatalf("unexpected query %q", q.Get("q"))
		}
		fmt.Fprint(w, `{"organic_results":[{"title":"a"}]}`)
	}))
	defer server.Close()

	client, err := NewClient("test-key", server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	raw, err := client.Search(context.Background(), "google", map[string]string{"q": "meal kit", "num": "10"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("expected raw payload")
	}
}

func TestClientSearch_RetriesOn429(t *testing.T) {
	t.Parallel()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"ads":[]}`)
	}))
	defer server.Close()

	client, err := NewClient("test-key", server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Search(context.Background(), "meta_ad_library", map[string]string{"q": "x"}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected retry, got %d calls", calls)
	}
}

func TestClientSearch_FatalStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewClient("test-key", server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Search(context.Background(), "google", nil); err == nil {
		t.Fatalf("expected error for 400 status")
	}
}

func TestNewClient_RequiresKey(t *testing.T) {
	if _, err := NewClient("", ""); err == nil {
		t.Fatalf("expected error for missing key")
	}
}
