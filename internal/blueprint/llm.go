package blueprint

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joshuarweaver/brieforge/internal/campaign"
	"github.com/joshuarweaver/brieforge/internal/enrich"
	"github.com/joshuarweaver/brieforge/internal/signals"
	"github.com/joshuarweaver/brieforge/pkg/llm"
)

const blueprintSystemPrompt = "You are an expert campaign strategist. Produce precise JSON, adhering strictly to the schema."

const blueprintTemperature = 0.7

// schemaTemplate is the response shape shown to the model verbatim.
const schemaTemplate = `{
  "campaign_id": "string UUID",
  "generated_at": "ISO-8601 timestamp",
  "summary": "string",
  "insights": {
    "top_entities": ["string"],
    "trending_topics": ["string"],
    "sentiment_distribution": {"positive": 0.4, "neutral": 0.4, "negative": 0.2}
  },
  "audience_hypotheses": [
    {
      "audience": "string",
      "focus_entities": ["string"],
      "pain_points": ["string"],
      "language_notes": ["string"],
      "supporting_signals": ["uuid-string"]
    }
  ],
  "value_propositions": [
    {
      "statement": "string",
      "supporting_entities": ["string"],
      "trend_score": 0.75,
      "proof_points": ["string"]
    }
  ],
  "messaging_pillars": [
    {
      "pillar": "string",
      "key_messages": ["string"],
      "supporting_urls": ["https://example.com"],
      "relevance_score": 0.8
    }
  ],
  "draft_assets": [
    {
      "id": "uuid-string",
      "platform": "meta",
      "objective": "conversion",
      "audience_focus": ["Audience A"],
      "headline": "string",
      "primary_text": "string",
      "cta": "Learn More",
      "supporting_signals": ["uuid-string"],
      "creative_hooks": ["string"],
      "variations": [
        {
          "headline": "string",
          "primary_text": "string",
          "cta": "Get Started"
        }
      ]
    }
  ],
  "next_actions": ["string"]
}`

// llmDocument decodes the model response section by section so one malformed
// section never discards the rest.
type llmDocument struct {
	GeneratedAt        string          `json:"generated_at"`
	Summary            string          `json:"summary"`
	Insights           json.RawMessage `json:"insights"`
	AudienceHypotheses json.RawMessage `json:"audience_hypotheses"`
	ValuePropositions  json.RawMessage `json:"value_propositions"`
	MessagingPillars   json.RawMessage `json:"messaging_pillars"`
	DraftAssets        json.RawMessage `json:"draft_assets"`
	NextActions        json.RawMessage `json:"next_actions"`
}

type llmMeta struct {
	Provider   string
	Model      string
	TokensUsed int
}

// generateLLM asks the model for an improved blueprint seeded with the
// rule-based baseline. Any failure is returned for the caller to recover from.
func generateLLM(
	ctx context.Context,
	client llm.Client,
	camp campaign.Campaign,
	sigs []signals.Signal,
	enrichments []enrich.Enrichment,
	analyses []Analysis,
	strategicBrief *StrategicBrief,
	ruleBased Blueprint,
	maxTokens int,
) (llmDocument, llmMeta, error) {
	if client == nil {
		return llmDocument{}, llmMeta{}, fmt.Errorf("llm client not configured")
	}

	baseline := ruleBased
	baseline.Metadata = Metadata{}
	baseline.ArtifactID = nil
	baselineJSON, err := json.MarshalIndent(baseline, "", "  ")
	if err != nil {
		return llmDocument{}, llmMeta{}, fmt.Errorf("encode baseline: %w", err)
	}

	prompt := "You are a senior marketing strategist tasked with producing a campaign blueprint." +
		"\n\n# DATA CONTEXT\n" +
		buildLLMContext(camp, sigs, enrichments, analyses, strategicBrief) +
		"\n\n# BASELINE RULE-BASED BLUEPRINT (REFERENCE)\n" +
		string(baselineJSON) +
		"\n\n# INSTRUCTIONS\n" +
		"Using the context and baseline above, craft an improved campaign blueprint.\n" +
		"Respond with valid JSON matching the exact schema provided below. " +
		"Ensure draft assets include an `id` (UUID), `headline`, `primary_text`, `cta`, " +
		"`audience_focus`, `supporting_signals`, `creative_hooks`, and at least one variation. " +
		"Ground every recommendation in the provided signals and analyses.\n" +
		"Schema:\n" +
		schemaTemplate +
		"\nReturn JSON only, with no prose, markdown, or additional commentary."

	resp, err := client.Generate(ctx, llm.Request{
		Prompt:       prompt,
		SystemPrompt: blueprintSystemPrompt,
		MaxTokens:    maxTokens,
		Temperature:  blueprintTemperature,
	})
	if err != nil {
		return llmDocument{}, llmMeta{}, fmt.Errorf("generate blueprint: %w", err)
	}

	raw, err := llm.ExtractJSON(resp.Content)
	if err != nil {
		return llmDocument{}, llmMeta{}, fmt.Errorf("parse blueprint response: %w", err)
	}

	var doc llmDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return llmDocument{}, llmMeta{}, fmt.Errorf("decode blueprint response: %w", err)
	}

	return doc, llmMeta{
		Provider:   resp.Provider,
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

func buildLLMContext(
	camp campaign.Campaign,
	sigs []signals.Signal,
	enrichments []enrich.Enrichment,
	analyses []Analysis,
	strategicBrief *StrategicBrief,
) string {
	var b strings.Builder

	b.WriteString("## Campaign Brief\n")
	briefJSON, err := json.MarshalIndent(camp.Brief, "", "  ")
	if err == nil {
		b.Write(briefJSON)
	}

	b.WriteString("\n\n## Signals (Top 10)\n")
	for idx, sig := range head(sigs, 10) {
		fmt.Fprintf(&b, "%d. [%s] query='%s' (relevance=%.2f)\n", idx+1, sig.Source, sig.Query, sig.RelevanceScore)
		if len(sig.Evidence) > 0 && sig.Evidence[0].Snippet != "" {
			fmt.Fprintf(&b, "   snippet: %s\n", truncate(sig.Evidence[0].Snippet, 300))
		}
	}

	b.WriteString("\n## Enrichment Highlights\n")
	fmt.Fprintf(&b, "- Pain points: %s\n", joinOrNA(head(flattenPainPoints(enrichments), 6)))
	fmt.Fprintf(&b, "- Language patterns: %s\n", joinOrNA(head(flattenLanguagePatterns(enrichments), 6)))
	fmt.Fprintf(&b, "- Key topics: %s\n", joinOrNA(head(collectKeyTopics(enrichments), 8)))

	if len(analyses) > 0 {
		b.WriteString("\n## Completed Analyses\n")
		for _, analysis := range head(analyses, 3) {
			fmt.Fprintf(&b, "- %s analysis (confidence=%.2f): %s\n",
				titleCase(analysis.AnalysisType), analysis.ConfidenceScore, truncate(analysis.Summary, 400))
		}
	}

	if strategicBrief != nil && strategicBrief.ExecutiveSummary != "" {
		b.WriteString("\n## Strategic Brief Snapshot\n")
		b.WriteString(truncate(strategicBrief.ExecutiveSummary, 800))
	}

	return b.String()
}

func flattenPainPoints(enrichments []enrich.Enrichment) []string {
	var values []string
	for _, enrichment := range enrichments {
		values = append(values, enrichment.Features.PainPoints...)
	}
	return dedupe(values)
}

func flattenLanguagePatterns(enrichments []enrich.Enrichment) []string {
	var values []string
	for _, enrichment := range enrichments {
		values = append(values, enrichment.Features.LanguagePatterns...)
	}
	return dedupe(values)
}

func joinOrNA(values []string) string {
	if len(values) == 0 {
		return "n/a"
	}
	return strings.Join(values, ", ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
