package blueprint

import (
	"context"
	"strings"
	"testing"

	"github.com/joshuarweaver/brieforge/pkg/llm"
)

type fakeLLM struct {
	resp llm.Response
	err  error
	last llm.Request
}

func (f *fakeLLM) Generate(_ context.Context, req llm.Request) (llm.Response, error) {
	f.last = req
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return f.resp, nil
}

func TestBuildLLMContext(t *testing.T) {
	strategicBrief := &StrategicBrief{ExecutiveSummary: "Lead with convenience messaging."}
	analyses := []Analysis{{AnalysisType: "competitive", Summary: "HelloFresh dominates paid search.", ConfidenceScore: 0.8}}

	prompt := buildLLMContext(mealKitCampaign(), testSignals(), testEnrichments(), analyses, strategicBrief)

	for _, want := range []string{
		"## Campaign Brief",
		"grow subscriptions",
		"## Signals (Top 10)",
		"1. [google] query='meal kit delivery' (relevance=0.80)",
		"snippet: busy parents struggle with weeknight dinner",
		"## Enrichment Highlights",
		"- Pain points: busy parents struggle with weeknight dinner",
		"## Completed Analyses",
		"Competitive analysis (confidence=0.80): HelloFresh dominates paid search.",
		"## Strategic Brief Snapshot",
		"Lead with convenience messaging.",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("context missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildLLMContextEmptyHighlights(t *testing.T) {
	prompt := buildLLMContext(mealKitCampaign(), nil, nil, nil, nil)
	if !strings.Contains(prompt, "- Pain points: n/a") {
		t.Fatalf("expected n/a placeholder:\n%s", prompt)
	}
	if strings.Contains(prompt, "## Completed Analyses") {
		t.Fatalf("analyses section should be omitted when empty")
	}
	if strings.Contains(prompt, "## Strategic Brief Snapshot") {
		t.Fatalf("brief section should be omitted when absent")
	}
}

func TestGenerateLLM(t *testing.T) {
	client := &fakeLLM{resp: llm.Response{
		Content:  "```json\n{\"summary\": \"LLM summary\"}\n```",
		Model:    "claude-sonnet-4-5",
		Provider: "anthropic",
		Usage:    llm.Usage{TotalTokens: 321},
	}}

	ruleBased := ruleBasedFixture()
	doc, meta, err := generateLLM(context.Background(), client, mealKitCampaign(), testSignals(), testEnrichments(), nil, nil, ruleBased, 4096)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if doc.Summary != "LLM summary" {
		t.Fatalf("summary = %q", doc.Summary)
	}
	if meta.Provider != "anthropic" || meta.Model != "claude-sonnet-4-5" || meta.TokensUsed != 321 {
		t.Fatalf("unexpected meta %+v", meta)
	}

	if client.last.SystemPrompt != blueprintSystemPrompt {
		t.Fatalf("unexpected system prompt %q", client.last.SystemPrompt)
	}
	if client.last.Temperature != blueprintTemperature {
		t.Fatalf("unexpected temperature %v", client.last.Temperature)
	}
	for _, want := range []string{"# DATA CONTEXT", "# BASELINE RULE-BASED BLUEPRINT (REFERENCE)", "# INSTRUCTIONS", ruleBased.Summary} {
		if !strings.Contains(client.last.Prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestGenerateLLMBadJSON(t *testing.T) {
	client := &fakeLLM{resp: llm.Response{Content: "I cannot help with that."}}
	if _, _, err := generateLLM(context.Background(), client, mealKitCampaign(), nil, nil, nil, nil, ruleBasedFixture(), 0); err == nil {
		t.Fatalf("expected error for non-JSON response")
	}
}

func TestGenerateLLMNilClient(t *testing.T) {
	if _, _, err := generateLLM(context.Background(), nil, mealKitCampaign(), nil, nil, nil, nil, ruleBasedFixture(), 0); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
