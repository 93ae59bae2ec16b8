package signals

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/joshuarweaver/brieforge/internal/campaign"
)

type fakeSearcher struct {
	mu       sync.Mutex
	payloads map[string]json.RawMessage
	err      error
	calls    int
}

func (f *fakeSearcher) Search(_ context.Context, engine string, _ map[string]string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if payload, ok := f.payloads[engine]; ok {
		return payload, nil
	}
	return json.RawMessage(`{}`), nil
}

type fakeCampaignStore struct {
	campaign campaign.Campaign
	err      error
}

func (f *fakeCampaignStore) Get(context.Context, string, string) (campaign.Campaign, error) {
	return f.campaign, f.err
}

func (f *fakeCampaignStore) Create(_ context.Context, c campaign.Campaign) (campaign.Campaign, error) {
	return c, nil
}

type memorySignalStore struct {
	mu      sync.Mutex
	signals []Signal
	err     error
}

func (m *memorySignalStore) Save(_ context.Context, sig Signal) (Signal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Signal{}, m.err
	}
	sig.ID = "sig-" + sig.Query
	m.signals = append(m.signals, sig)
	return sig, nil
}

func (m *memorySignalStore) ListByCampaign(context.Context, string, int) ([]Signal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Signal(nil), m.signals...), nil
}

func (m *memorySignalStore) ListTopByRelevance(context.Context, string, int) ([]Signal, error) {
	return m.ListByCampaign(context.Background(), "", 0)
}

func testCampaign() campaign.Campaign {
	return campaign.Campaign{
		ID:          "c1",
		WorkspaceID: "w1",
		Name:        "Meal Kit Launch",
		Brief:       mealKitBrief(),
	}
}

func TestCollector_Collect(t *testing.T) {
	searcher := &fakeSearcher{payloads: map[string]json.RawMessage{
		"google": json.RawMessage(`{"organic_results": [{"title": "HelloFresh meal kit review", "snippet": "busy parents love this growth in convenience", "link": "https://a.example"}]}`),
	}}
	store := &memorySignalStore{}
	collector := NewCollector(searcher, NewQueryBuilder(nil, nil), &fakeCampaignStore{campaign: testCampaign()}, store, nil)

	summary, err := collector.Collect(context.Background(), "c1", "w1", []string{"google_serp"}, 2)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if summary.CartridgesRun != 1 {
		t.Fatalf("cartridges run = %d", summary.CartridgesRun)
	}
	if summary.TotalSignals != 2 {
		t.Fatalf("total signals = %d, want 2", summary.TotalSignals)
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("unexpected errors %v", summary.Errors)
	}

	if len(store.signals) != 2 {
		t.Fatalf("persisted %d signals", len(store.signals))
	}
	sig := store.signals[0]
	if sig.Source != "google" || sig.SearchMethod != "google_serp" {
		t.Fatalf("unexpected signal %+v", sig)
	}
	if len(sig.Evidence) != 1 || sig.Evidence[0].RelevanceScore <= 0 {
		t.Fatalf("expected scored evidence, got %+v", sig.Evidence)
	}
	if sig.RelevanceScore != sig.Evidence[0].RelevanceScore {
		t.Fatalf("aggregate should equal single evidence score")
	}
	if _, ok := sig.Provenance["collected_at"]; !ok {
		t.Fatalf("expected collected_at provenance")
	}
}

func TestCollector_SearchFailuresReported(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("searchapi down")}
	store := &memorySignalStore{}
	collector := NewCollector(searcher, NewQueryBuilder(nil, nil), &fakeCampaignStore{campaign: testCampaign()}, store, nil)

	summary, err := collector.Collect(context.Background(), "c1", "w1", []string{"google_serp", "meta_ads"}, 1)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if summary.TotalSignals != 0 {
		t.Fatalf("expected no signals, got %d", summary.TotalSignals)
	}
	if len(summary.Errors) != 2 {
		t.Fatalf("expected 2 cartridge errors, got %v", summary.Errors)
	}
}

func TestCollector_MissingCampaign(t *testing.T) {
	collector := NewCollector(&fakeSearcher{}, NewQueryBuilder(nil, nil), &fakeCampaignStore{err: campaign.ErrNotFound}, &memorySignalStore{}, nil)
	if _, err := collector.Collect(context.Background(), "nope", "w1", nil, 1); !errors.Is(err, campaign.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCollector_RunsAllCartridgesByDefault(t *testing.T) {
	searcher := &fakeSearcher{}
	collector := NewCollector(searcher, NewQueryBuilder(nil, nil), &fakeCampaignStore{campaign: testCampaign()}, &memorySignalStore{}, nil)

	summary, err := collector.Collect(context.Background(), "c1", "w1", nil, 1)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if summary.CartridgesRun != len(Cartridges()) {
		t.Fatalf("cartridges run = %d, want %d", summary.CartridgesRun, len(Cartridges()))
	}
}
