package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/joshuarweaver/brieforge/internal/audit"
	"github.com/joshuarweaver/brieforge/internal/campaign"
	"github.com/joshuarweaver/brieforge/internal/signals"
)

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

type fakeSignalStore struct {
	signals []signals.Signal
}

func (f *fakeSignalStore) Save(_ context.Context, sig signals.Signal) (signals.Signal, error) {
	return sig, nil
}

func (f *fakeSignalStore) ListByCampaign(context.Context, string, int) ([]signals.Signal, error) {
	return f.signals, nil
}

func (f *fakeSignalStore) ListTopByRelevance(context.Context, string, int) ([]signals.Signal, error) {
	return f.signals, nil
}

type memoryEnrichmentStore struct {
	saved map[string]Enrichment
	err   error
}

func newMemoryEnrichmentStore() *memoryEnrichmentStore {
	return &memoryEnrichmentStore{saved: make(map[string]Enrichment)}
}

func (m *memoryEnrichmentStore) Save(_ context.Context, enrichment Enrichment) (Enrichment, error) {
	if m.err != nil {
		return Enrichment{}, m.err
	}
	enrichment.ID = "enr-" + enrichment.SignalID
	m.saved[enrichment.SignalID] = enrichment
	return enrichment, nil
}

func (m *memoryEnrichmentStore) ExistsSemantic(_ context.Context, signalID string) (bool, error) {
	_, ok := m.saved[signalID]
	return ok, nil
}

func (m *memoryEnrichmentStore) ListForSignals(_ context.Context, signalIDs []string) ([]Enrichment, error) {
	var out []Enrichment
	for _, id := range signalIDs {
		if enrichment, ok := m.saved[id]; ok {
			out = append(out, enrichment)
		}
	}
	return out, nil
}

type recordingAuditor struct {
	events []audit.Event
}

func (r *recordingAuditor) Record(_ context.Context, event audit.Event) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingAuditor) ListEvents(context.Context, string, string, int) ([]audit.Event, error) {
	return r.events, nil
}

func testSignals() []signals.Signal {
	return []signals.Signal{
		{ID: "sig-1", CampaignID: "c1", RelevanceScore: 0.5, Evidence: []signals.Evidence{{Title: "HelloFresh", Snippet: "busy parents struggle with dinner"}}},
		{ID: "sig-2", CampaignID: "c1", RelevanceScore: 0.3, Evidence: []signals.Evidence{{Title: "Blue Apron", Snippet: "growth in meal kits"}}},
	}
}

func TestEnrichCampaign(t *testing.T) {
	store := newMemoryEnrichmentStore()
	auditor := &recordingAuditor{}
	svc := NewService(Engine{},
		&fakeCampaignStore{campaign: campaign.Campaign{ID: "c1", WorkspaceID: "w1"}},
		&fakeSignalStore{signals: testSignals()},
		store, auditor, nil)

	summary, err := svc.EnrichCampaign(context.Background(), "c1", "w1", "u1", 0)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if summary.Created != 2 || summary.Skipped != 0 || summary.Processed != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	saved, ok := store.saved["sig-1"]
	if !ok {
		t.Fatalf("expected enrichment for sig-1")
	}
	if saved.EnrichmentType != EnrichmentTypeSemantic {
		t.Fatalf("unexpected type %q", saved.EnrichmentType)
	}
	if len(saved.Features.PainPoints) != 1 {
		t.Fatalf("expected one pain point, got %v", saved.Features.PainPoints)
	}

	if len(auditor.events) != 1 || auditor.events[0].EventType != "signals.enriched" {
		t.Fatalf("unexpected audit events %+v", auditor.events)
	}
	if auditor.events[0].Details["created"] != 2 {
		t.Fatalf("unexpected audit details %+v", auditor.events[0].Details)
	}
}

func TestEnrichCampaignIdempotent(t *testing.T) {
	store := newMemoryEnrichmentStore()
	svc := NewService(Engine{},
		&fakeCampaignStore{campaign: campaign.Campaign{ID: "c1", WorkspaceID: "w1"}},
		&fakeSignalStore{signals: testSignals()},
		store, nil, nil)

	first, err := svc.EnrichCampaign(context.Background(), "c1", "w1", "", 0)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := svc.EnrichCampaign(context.Background(), "c1", "w1", "", 0)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Created != 0 {
		t.Fatalf("second run created %d, want 0", second.Created)
	}
	if second.Skipped != first.Created {
		t.Fatalf("second run skipped %d, want %d", second.Skipped, first.Created)
	}
	if len(store.saved) != 2 {
		t.Fatalf("expected 2 stored enrichments, got %d", len(store.saved))
	}
}

func TestEnrichCampaignMissingCampaign(t *testing.T) {
	svc := NewService(Engine{},
		&fakeCampaignStore{err: campaign.ErrNotFound},
		&fakeSignalStore{}, newMemoryEnrichmentStore(), nil, nil)

	if _, err := svc.EnrichCampaign(context.Background(), "nope", "w1", "", 0); !errors.Is(err, campaign.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
