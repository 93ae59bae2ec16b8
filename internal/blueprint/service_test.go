package blueprint

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/joshuarweaver/brieforge/internal/audit"
	"github.com/joshuarweaver/brieforge/internal/campaign"
	"github.com/joshuarweaver/brieforge/internal/enrich"
	"github.com/joshuarweaver/brieforge/internal/signals"
	"github.com/joshuarweaver/brieforge/pkg/llm"
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

type fakeEnrichmentStore struct {
	enrichments []enrich.Enrichment
}

func (f *fakeEnrichmentStore) Save(_ context.Context, e enrich.Enrichment) (enrich.Enrichment, error) {
	return e, nil
}

func (f *fakeEnrichmentStore) ExistsSemantic(context.Context, string) (bool, error) {
	return false, nil
}

func (f *fakeEnrichmentStore) ListForSignals(context.Context, []string) ([]enrich.Enrichment, error) {
	return f.enrichments, nil
}

type fakeBlueprintStore struct {
	artifacts []Artifact
	saveErr   error
}

func (f *fakeBlueprintStore) SaveArtifact(_ context.Context, artifact Artifact) (Artifact, error) {
	if f.saveErr != nil {
		return Artifact{}, f.saveErr
	}
	artifact.ID = "art-1"
	f.artifacts = append(f.artifacts, artifact)
	return artifact, nil
}

func (f *fakeBlueprintStore) GetArtifact(context.Context, string) (Artifact, error) {
	if len(f.artifacts) == 0 {
		return Artifact{}, ErrArtifactNotFound
	}
	return f.artifacts[0], nil
}

func (f *fakeBlueprintStore) ListArtifacts(context.Context, string, int) ([]Artifact, error) {
	return f.artifacts, nil
}

func (f *fakeBlueprintStore) ListCompletedAnalyses(context.Context, string, int) ([]Analysis, error) {
	return nil, nil
}

func (f *fakeBlueprintStore) LatestStrategicBrief(context.Context, string) (*StrategicBrief, error) {
	return nil, nil
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

func newTestService(store *fakeBlueprintStore, client llm.Client, useLLM bool, auditor audit.Logger) *Service {
	return NewService(
		&fakeCampaignStore{campaign: mealKitCampaign()},
		&fakeSignalStore{signals: testSignals()},
		&fakeEnrichmentStore{enrichments: testEnrichments()},
		store, client, auditor, nil, 75, useLLM, 4096,
	)
}

func TestGenerateRuleBased(t *testing.T) {
	store := &fakeBlueprintStore{}
	auditor := &recordingAuditor{}
	svc := newTestService(store, nil, false, auditor)

	bp, err := svc.Generate(context.Background(), "c1", "w1", "u1", Options{Persist: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if bp.Metadata.GenerationMethod != "rule_based" || bp.Metadata.LLMUsed {
		t.Fatalf("unexpected metadata %+v", bp.Metadata)
	}
	if bp.ArtifactID == nil || *bp.ArtifactID != "art-1" || !bp.Metadata.Persisted {
		t.Fatalf("expected persisted artifact, got %+v", bp.Metadata)
	}
	if bp.Metadata.RuleBasedPreview == nil {
		t.Fatalf("expected rule-based preview in metadata")
	}
	if len(store.artifacts) != 1 {
		t.Fatalf("expected 1 saved artifact")
	}
	if len(auditor.events) != 1 || auditor.events[0].EventType != "campaign.blueprint_generated" {
		t.Fatalf("unexpected audit events %+v", auditor.events)
	}
}

func TestGenerateWithLLM(t *testing.T) {
	client := &fakeLLM{resp: llm.Response{
		Content:  `{"summary": "LLM summary"}`,
		Model:    "gpt-4o",
		Provider: "openai",
		Usage:    llm.Usage{TotalTokens: 100},
	}}
	svc := newTestService(&fakeBlueprintStore{}, client, true, nil)

	bp, err := svc.Generate(context.Background(), "c1", "w1", "u1", Options{Persist: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if bp.Metadata.GenerationMethod != "llm" || !bp.Metadata.LLMUsed {
		t.Fatalf("unexpected metadata %+v", bp.Metadata)
	}
	if bp.Summary != "LLM summary" {
		t.Fatalf("summary = %q", bp.Summary)
	}
	if bp.Metadata.LLMProvider != "openai" || bp.Metadata.TokensUsed != 100 {
		t.Fatalf("unexpected metadata %+v", bp.Metadata)
	}
	// Sections the model omitted keep the rule-based values.
	if len(bp.MessagingPillars) == 0 {
		t.Fatalf("expected fallback pillars")
	}
}

func TestGenerateLLMFailureFallsBack(t *testing.T) {
	client := &fakeLLM{err: errors.New("provider down")}
	svc := newTestService(&fakeBlueprintStore{}, client, true, nil)

	bp, err := svc.Generate(context.Background(), "c1", "w1", "u1", Options{Persist: true})
	if err != nil {
		t.Fatalf("llm failure should not be fatal: %v", err)
	}
	if bp.Metadata.GenerationMethod != "rule_based" || bp.Metadata.LLMUsed {
		t.Fatalf("unexpected metadata %+v", bp.Metadata)
	}
	if bp.Metadata.LLMError == "" {
		t.Fatalf("expected llm_error in metadata")
	}
	if !bp.Metadata.Persisted {
		t.Fatalf("fallback blueprint should still persist")
	}
}

func TestGenerateUseLLMOverride(t *testing.T) {
	client := &fakeLLM{resp: llm.Response{Content: `{"summary": "LLM summary"}`}}
	svc := newTestService(&fakeBlueprintStore{}, client, true, nil)

	disabled := false
	bp, err := svc.Generate(context.Background(), "c1", "w1", "u1", Options{Persist: false, UseLLM: &disabled})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if bp.Metadata.GenerationMethod != "rule_based" {
		t.Fatalf("override should disable llm, got %+v", bp.Metadata)
	}
	if bp.Metadata.Persisted || bp.ArtifactID != nil {
		t.Fatalf("unpersisted run should not carry artifact id")
	}
}

func TestGenerateUnpersistedArtifactIDNull(t *testing.T) {
	svc := newTestService(&fakeBlueprintStore{}, nil, false, nil)

	bp, err := svc.Generate(context.Background(), "c1", "w1", "u1", Options{Persist: false})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	encoded, err := json.Marshal(bp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	raw, ok := doc["artifact_id"]
	if !ok {
		t.Fatalf("artifact_id key must be present on unpersisted blueprints")
	}
	if string(raw) != "null" {
		t.Fatalf("artifact_id = %s, want null", raw)
	}
}

func TestGeneratePersistFailureFatal(t *testing.T) {
	svc := newTestService(&fakeBlueprintStore{saveErr: errors.New("insert failed")}, nil, false, nil)
	if _, err := svc.Generate(context.Background(), "c1", "w1", "u1", Options{Persist: true}); err == nil {
		t.Fatalf("expected persistence failure to be fatal")
	}
}

func TestGenerateMissingCampaign(t *testing.T) {
	svc := NewService(
		&fakeCampaignStore{err: campaign.ErrNotFound},
		&fakeSignalStore{}, &fakeEnrichmentStore{}, &fakeBlueprintStore{},
		nil, nil, nil, 75, false, 4096,
	)
	if _, err := svc.Generate(context.Background(), "nope", "w1", "", Options{}); !errors.Is(err, campaign.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
