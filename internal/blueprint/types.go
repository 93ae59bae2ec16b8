// Package blueprint turns collected signals and their enrichments into a
// structured campaign blueprint: insights, audience hypotheses, value
// propositions, messaging pillars, and draft ad assets.
package blueprint

import "time"

// Insights aggregates campaign-level rollups from enrichments and queries.
type Insights struct {
	TopEntities           []string           `json:"top_entities"`
	TrendingTopics        []string           `json:"trending_topics"`
	SentimentDistribution map[string]float64 `json:"sentiment_distribution"`
}

// AudienceHypothesis links one briefed audience to supporting evidence.
type AudienceHypothesis struct {
	Audience          string   `json:"audience"`
	FocusEntities     []string `json:"focus_entities"`
	PainPoints        []string `json:"pain_points"`
	LanguageNotes     []string `json:"language_notes"`
	SupportingSignals []string `json:"supporting_signals"`
}

// ValueProposition is one evidence-backed offer statement. TrendScore is nil
// for the synthesized fallback proposition.
type ValueProposition struct {
	Statement          string   `json:"statement"`
	SupportingEntities []string `json:"supporting_entities"`
	TrendScore         *float64 `json:"trend_score"`
	ProofPoints        []string `json:"proof_points"`
}

// MessagingPillar groups key messages under one collection query.
type MessagingPillar struct {
	Pillar         string   `json:"pillar"`
	KeyMessages    []string `json:"key_messages"`
	SupportingURLs []string `json:"supporting_urls"`
	RelevanceScore float64  `json:"relevance_score"`
}

// AssetVariation is one alternate rendering of a draft asset.
type AssetVariation struct {
	Headline    string `json:"headline"`
	PrimaryText string `json:"primary_text"`
	CTA         string `json:"cta"`
}

// DraftAsset is a platform-ready ad draft. Every asset carries an ID and at
// least one variation.
type DraftAsset struct {
	ID                string           `json:"id"`
	Platform          string           `json:"platform"`
	Objective         string           `json:"objective"`
	AudienceFocus     []string         `json:"audience_focus"`
	Headline          string           `json:"headline"`
	PrimaryText       string           `json:"primary_text"`
	CTA               string           `json:"cta"`
	SupportingSignals []string         `json:"supporting_signals"`
	CreativeHooks     []string         `json:"creative_hooks"`
	Variations        []AssetVariation `json:"variations"`
}

// PreviewAsset is the compact asset shape embedded in the fallback preview.
type PreviewAsset struct {
	Platform      string   `json:"platform"`
	Headline      string   `json:"headline"`
	AudienceFocus []string `json:"audience_focus"`
}

// Preview is a compact snapshot of the rule-based blueprint, kept in metadata
// so consumers of an LLM blueprint can always see the deterministic baseline.
type Preview struct {
	Summary          string            `json:"summary"`
	MessagingPillars []MessagingPillar `json:"messaging_pillars"`
	DraftAssets      []PreviewAsset    `json:"draft_assets"`
}

// Metadata records how a blueprint was produced.
type Metadata struct {
	GenerationMethod string   `json:"generation_method"`
	LLMUsed          bool     `json:"llm_used"`
	LLMProvider      string   `json:"llm_provider,omitempty"`
	LLMModel         string   `json:"llm_model,omitempty"`
	TokensUsed       int      `json:"tokens_used,omitempty"`
	LLMError         string   `json:"llm_error,omitempty"`
	RuleBasedPreview *Preview `json:"rule_based_preview,omitempty"`
	Persisted        bool     `json:"persisted"`
}

// Blueprint is the full campaign blueprint document.
type Blueprint struct {
	// ArtifactID is null until the blueprint is persisted; the key is always
	// present so clients can distinguish "not persisted" from "missing".
	ArtifactID         *string              `json:"artifact_id"`
	CampaignID         string               `json:"campaign_id"`
	GeneratedAt        string               `json:"generated_at"`
	Summary            string               `json:"summary"`
	Insights           Insights             `json:"insights"`
	AudienceHypotheses []AudienceHypothesis `json:"audience_hypotheses"`
	ValuePropositions  []ValueProposition   `json:"value_propositions"`
	MessagingPillars   []MessagingPillar    `json:"messaging_pillars"`
	DraftAssets        []DraftAsset         `json:"draft_assets"`
	NextActions        []string             `json:"next_actions"`
	Metadata           Metadata             `json:"metadata"`
}

// Analysis is a completed deep-dive over a campaign's signals, produced out
// of band and folded into the LLM context when present.
type Analysis struct {
	ID              string    `json:"id"`
	CampaignID      string    `json:"campaign_id"`
	AnalysisType    string    `json:"analysis_type"`
	Summary         string    `json:"summary"`
	ConfidenceScore float64   `json:"confidence_score"`
	CreatedAt       time.Time `json:"created_at"`
}

// StrategicBrief is the latest long-form strategy document for a campaign.
type StrategicBrief struct {
	ID               string    `json:"id"`
	CampaignID       string    `json:"campaign_id"`
	ExecutiveSummary string    `json:"executive_summary"`
	CreatedAt        time.Time `json:"created_at"`
}
