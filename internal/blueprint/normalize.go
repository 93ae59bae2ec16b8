package blueprint

import (
	"encoding/json"

	"github.com/google/uuid"
)

// normalize folds a model-produced document onto the rule-based fallback.
// Sections the model omitted or mangled keep their deterministic values, so
// the result always satisfies the blueprint contract.
func normalize(doc llmDocument, fallback Blueprint) Blueprint {
	out := Blueprint{
		CampaignID:  fallback.CampaignID,
		GeneratedAt: fallback.GeneratedAt,
		Summary:     fallback.Summary,
	}
	if doc.GeneratedAt != "" {
		out.GeneratedAt = doc.GeneratedAt
	}
	if doc.Summary != "" {
		out.Summary = doc.Summary
	}

	out.Insights = mergeInsights(fallback.Insights, doc.Insights)
	out.AudienceHypotheses = decodeOrFallback(doc.AudienceHypotheses, fallback.AudienceHypotheses)
	out.ValuePropositions = decodeOrFallback(doc.ValuePropositions, fallback.ValuePropositions)
	out.MessagingPillars = decodeOrFallback(doc.MessagingPillars, fallback.MessagingPillars)
	out.DraftAssets = normalizeAssets(decodeOrFallback(doc.DraftAssets, fallback.DraftAssets))
	out.NextActions = decodeActions(doc.NextActions, fallback.NextActions)
	return out
}

// mergeInsights overrides fallback fields with whatever the model produced,
// keeping the fallback value where the model left a field empty.
func mergeInsights(base Insights, raw json.RawMessage) Insights {
	if len(raw) == 0 {
		return base
	}
	var override Insights
	if err := json.Unmarshal(raw, &override); err != nil {
		return base
	}
	merged := base
	if len(override.TopEntities) > 0 {
		merged.TopEntities = override.TopEntities
	}
	if len(override.TrendingTopics) > 0 {
		merged.TrendingTopics = override.TrendingTopics
	}
	if len(override.SentimentDistribution) > 0 {
		merged.SentimentDistribution = override.SentimentDistribution
	}
	return merged
}

// decodeOrFallback replaces the fallback slice wholesale when the raw section
// decodes to a non-empty slice of the right shape.
func decodeOrFallback[T any](raw json.RawMessage, fallback []T) []T {
	if len(raw) == 0 {
		return fallback
	}
	var decoded []T
	if err := json.Unmarshal(raw, &decoded); err != nil || len(decoded) == 0 {
		return fallback
	}
	return decoded
}

func decodeActions(raw json.RawMessage, fallback []string) []string {
	if len(raw) == 0 {
		return fallback
	}
	var decoded []string
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded == nil {
		return fallback
	}
	return decoded
}

// normalizeAssets backfills the invariants every draft asset must carry: an
// ID, a CTA, and at least one variation.
func normalizeAssets(assets []DraftAsset) []DraftAsset {
	out := make([]DraftAsset, 0, len(assets))
	for _, asset := range assets {
		if asset.ID == "" {
			asset.ID = uuid.New().String()
		}
		if asset.CTA == "" {
			asset.CTA = "Learn More"
		}
		if len(asset.Variations) == 0 {
			asset.Variations = []AssetVariation{{
				Headline:    asset.Headline,
				PrimaryText: asset.PrimaryText,
				CTA:         asset.CTA,
			}}
		}
		out = append(out, asset)
	}
	return out
}
