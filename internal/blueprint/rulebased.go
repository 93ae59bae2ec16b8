package blueprint

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/joshuarweaver/brieforge/internal/campaign"
	"github.com/joshuarweaver/brieforge/internal/enrich"
	"github.com/joshuarweaver/brieforge/internal/signals"
)

const (
	maxTopEntities      = 8
	maxTrendingTopics   = 8
	maxValueProps       = 5
	maxPillars          = 6
	maxAssets           = 6
	maxFocusEntities    = 5
	maxSupportingByAud  = 5
	maxFeatureCollected = 6
	maxHeadlineLen      = 90
	maxPrimaryTextLen   = 240
	sentimentThreshold  = 0.1
)

// buildRuleBased produces the deterministic blueprint. It never fails: empty
// inputs yield an empty-but-valid document.
func buildRuleBased(camp campaign.Campaign, sigs []signals.Signal, enrichments []enrich.Enrichment, generatedAt string) Blueprint {
	hypotheses := buildAudienceHypotheses(camp, enrichments, sigs)
	return Blueprint{
		CampaignID:         camp.ID,
		GeneratedAt:        generatedAt,
		Summary:            buildSummary(camp, sigs),
		Insights:           buildInsights(sigs, enrichments),
		AudienceHypotheses: hypotheses,
		ValuePropositions:  buildValueProps(camp, enrichments, sigs),
		MessagingPillars:   buildMessagingPillars(sigs),
		DraftAssets:        buildDraftAssets(sigs, hypotheses),
		NextActions:        buildNextActions(sigs, enrichments),
		Metadata: Metadata{
			GenerationMethod: "rule_based",
			LLMUsed:          false,
		},
	}
}

func buildSummary(camp campaign.Campaign, sigs []signals.Signal) string {
	if len(sigs) == 0 {
		return fmt.Sprintf("No signals collected yet for %s. Run signal collection to populate blueprint.", camp.Name)
	}

	sourceSet := make(map[string]bool)
	for _, sig := range head(sigs, 5) {
		sourceSet[sig.Source] = true
	}
	sources := make([]string, 0, len(sourceSet))
	for source := range sourceSet {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	goal := camp.Brief.Goal
	if goal == "" {
		goal = "the campaign objective"
	}
	return fmt.Sprintf("Synthesized %d signals across %s to accelerate work on %s.",
		len(sigs), strings.Join(sources, ", "), goal)
}

func buildInsights(sigs []signals.Signal, enrichments []enrich.Enrichment) Insights {
	var trending []string
	seenQueries := make(map[string]bool)
	for _, sig := range sigs {
		query := strings.TrimSpace(sig.Query)
		if query != "" && !seenQueries[strings.ToLower(query)] {
			trending = append(trending, query)
			seenQueries[strings.ToLower(query)] = true
		}
		if len(trending) >= maxTrendingTopics {
			break
		}
	}

	counts := map[string]int{"positive": 0, "neutral": 0, "negative": 0}
	for _, enrichment := range enrichments {
		switch {
		case enrichment.Sentiment > sentimentThreshold:
			counts["positive"]++
		case enrichment.Sentiment < -sentimentThreshold:
			counts["negative"]++
		default:
			counts["neutral"]++
		}
	}
	total := counts["positive"] + counts["neutral"] + counts["negative"]
	if total == 0 {
		total = 1
	}
	distribution := make(map[string]float64, 3)
	for bucket, count := range counts {
		distribution[bucket] = round3(float64(count) / float64(total))
	}

	return Insights{
		TopEntities:           topEntities(enrichments, maxTopEntities),
		TrendingTopics:        trending,
		SentimentDistribution: distribution,
	}
}

func buildAudienceHypotheses(camp campaign.Campaign, enrichments []enrich.Enrichment, sigs []signals.Signal) []AudienceHypothesis {
	var hypotheses []AudienceHypothesis
	for _, audience := range camp.Brief.Audiences {
		hypotheses = append(hypotheses, AudienceHypothesis{
			Audience:          audience,
			FocusEntities:     findFocusEntities(audience, enrichments),
			PainPoints:        collectPainPoints(enrichments),
			LanguageNotes:     collectLanguagePatterns(enrichments),
			SupportingSignals: findSignalsForAudience(audience, sigs),
		})
	}
	return hypotheses
}

func buildValueProps(camp campaign.Campaign, enrichments []enrich.Enrichment, sigs []signals.Signal) []ValueProposition {
	offer := camp.Brief.Offer
	if offer == "" {
		offer = "the product"
	}

	var props []ValueProposition
	for _, enrichment := range enrichments {
		if len(props) >= maxValueProps {
			break
		}
		pain := enrichment.Features.PrimaryPain
		if pain == "" {
			pain = "key pains"
		}
		trend := enrichment.TrendScore
		props = append(props, ValueProposition{
			Statement:          fmt.Sprintf("%s addresses %s with evidence-backed messaging.", offer, pain),
			SupportingEntities: head(enrichment.Entities, 3),
			TrendScore:         &trend,
			ProofPoints:        extractProofPoints(enrichment, sigs),
		})
	}

	if len(props) == 0 {
		props = append(props, ValueProposition{
			Statement:          fmt.Sprintf("%s delivers measurable outcomes against the campaign goal.", offer),
			SupportingEntities: []string{},
			ProofPoints:        []string{},
		})
	}
	return props
}

func buildMessagingPillars(sigs []signals.Signal) []MessagingPillar {
	var pillars []MessagingPillar
	for _, sig := range head(sigs, maxPillars) {
		var urls []string
		for _, ev := range sig.Evidence {
			if ev.URL != "" {
				urls = append(urls, ev.URL)
			}
			if len(urls) >= 4 {
				break
			}
		}

		pillars = append(pillars, MessagingPillar{
			Pillar:         sig.Query,
			KeyMessages:    head(cleanSnippets(sig), 3),
			SupportingURLs: urls,
			RelevanceScore: sig.RelevanceScore,
		})
	}
	return pillars
}

func buildDraftAssets(sigs []signals.Signal, hypotheses []AudienceHypothesis) []DraftAsset {
	var assets []DraftAsset
	for _, sig := range head(sigs, maxAssets) {
		assetID := uuid.New().String()
		snippets := cleanSnippets(sig)

		headline := sig.Query
		if len(sig.Evidence) > 0 && sig.Evidence[0].Title != "" {
			headline = sig.Evidence[0].Title
		}
		if headline == "" {
			headline = "Campaign Asset " + assetID[:8]
		}
		headline = truncate(strings.TrimSpace(headline), maxHeadlineLen)

		primaryText := sig.Query
		if len(snippets) > 0 {
			primaryText = snippets[0]
		}
		if primaryText == "" {
			primaryText = headline
		}
		primaryText = truncate(primaryText, maxPrimaryTextLen)

		var hooks []string
		for _, ev := range head(sig.Evidence, 3) {
			hooks = append(hooks, evidenceTitle(ev, sig.Query))
		}

		objective := "conversion"
		if sig.Source == "youtube" || sig.Source == "pinterest" {
			objective = "awareness"
		}

		assets = append(assets, DraftAsset{
			ID:                assetID,
			Platform:          sig.Source,
			Objective:         objective,
			AudienceFocus:     matchAudiencesToSignal(sig, hypotheses),
			Headline:          headline,
			PrimaryText:       primaryText,
			CTA:               "Learn More",
			SupportingSignals: []string{sig.ID},
			CreativeHooks:     hooks,
			Variations:        buildVariations(headline, primaryText),
		})
	}
	return assets
}

func buildNextActions(sigs []signals.Signal, enrichments []enrich.Enrichment) []string {
	var actions []string
	if len(sigs) == 0 {
		actions = append(actions, "Run signal collection to gather competitive and audience intelligence.")
	}
	if len(enrichments) == 0 {
		actions = append(actions, "Enrich signals to unlock audience hypotheses and messaging themes.")
	} else {
		actions = append(actions, "Review enriched entities to align creative briefs with audience language.")
	}
	actions = append(actions,
		"Select two priority pillars and produce long-form copy drafts.",
		"Validate asset hooks with stakeholders before export.",
	)
	return actions
}

// buildVariations always yields exactly two alternates.
func buildVariations(headline, primaryText string) []AssetVariation {
	truncated := primaryText
	if len(primaryText) > 200 {
		truncated = primaryText[:200] + "..."
	}
	return []AssetVariation{
		{Headline: headline, PrimaryText: primaryText, CTA: "Get Started"},
		{
			Headline:    truncate(headline, 70) + " | Limited Offer",
			PrimaryText: truncated + " Act today to stay ahead.",
			CTA:         "See How",
		},
	}
}

func buildFallbackPreview(bp Blueprint) *Preview {
	preview := &Preview{
		Summary:          bp.Summary,
		MessagingPillars: head(bp.MessagingPillars, 3),
	}
	for _, asset := range head(bp.DraftAssets, 3) {
		preview.DraftAssets = append(preview.DraftAssets, PreviewAsset{
			Platform:      asset.Platform,
			Headline:      asset.Headline,
			AudienceFocus: asset.AudienceFocus,
		})
	}
	return preview
}

// topEntities ranks entities across all enrichments by frequency, ties broken
// by first appearance.
func topEntities(enrichments []enrich.Enrichment, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, enrichment := range enrichments {
		for _, entity := range enrichment.Entities {
			if counts[entity] == 0 {
				order = append(order, entity)
			}
			counts[entity]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return head(order, limit)
}

func collectPainPoints(enrichments []enrich.Enrichment) []string {
	var values []string
	for _, enrichment := range enrichments {
		values = append(values, enrichment.Features.PainPoints...)
	}
	return head(dedupe(values), maxFeatureCollected)
}

func collectLanguagePatterns(enrichments []enrich.Enrichment) []string {
	var values []string
	for _, enrichment := range enrichments {
		values = append(values, enrichment.Features.LanguagePatterns...)
	}
	return head(dedupe(values), maxFeatureCollected)
}

func collectKeyTopics(enrichments []enrich.Enrichment) []string {
	var values []string
	for _, enrichment := range enrichments {
		values = append(values, enrichment.Features.KeyTopics...)
	}
	return dedupe(values)
}

// findFocusEntities keeps entities whose name contains any audience token
// longer than three characters.
func findFocusEntities(audience string, enrichments []enrich.Enrichment) []string {
	tokens := audienceTokens(audience)
	var entities []string
	for _, enrichment := range enrichments {
		for _, entity := range enrichment.Entities {
			lower := strings.ToLower(entity)
			for _, token := range tokens {
				if strings.Contains(lower, token) {
					entities = append(entities, entity)
					break
				}
			}
		}
	}
	return head(dedupe(entities), maxFocusEntities)
}

func findSignalsForAudience(audience string, sigs []signals.Signal) []string {
	tokens := audienceTokens(audience)
	var supporting []string
	for _, sig := range sigs {
		parts := []string{strings.ToLower(sig.Query)}
		for _, ev := range sig.Evidence {
			parts = append(parts, cleanText(ev.Snippet))
		}
		haystack := strings.Join(parts, " ")
		for _, token := range tokens {
			if strings.Contains(haystack, token) {
				supporting = append(supporting, sig.ID)
				break
			}
		}
		if len(supporting) >= maxSupportingByAud {
			break
		}
	}
	return supporting
}

func extractProofPoints(enrichment enrich.Enrichment, sigs []signals.Signal) []string {
	var points []string
	for _, sig := range sigs {
		if sig.ID == enrichment.SignalID {
			points = append(points, head(cleanSnippets(sig), 2)...)
		}
	}
	points = append(points, head(enrichment.Features.KeyTopics, 2)...)
	return head(points, 4)
}

func matchAudiencesToSignal(sig signals.Signal, hypotheses []AudienceHypothesis) []string {
	parts := []string{cleanText(sig.Query)}
	for _, ev := range sig.Evidence {
		parts = append(parts, cleanText(ev.Snippet))
	}
	haystack := strings.Join(parts, " ")

	var matches []string
	for _, hypothesis := range hypotheses {
		for _, token := range audienceTokens(hypothesis.Audience) {
			if strings.Contains(haystack, token) {
				matches = append(matches, hypothesis.Audience)
				break
			}
		}
	}
	return head(matches, 3)
}

func audienceTokens(audience string) []string {
	var tokens []string
	for _, token := range strings.Fields(strings.ToLower(audience)) {
		if len(token) > 3 {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func cleanSnippets(sig signals.Signal) []string {
	var snippets []string
	for _, ev := range sig.Evidence {
		cleaned := strings.Join(strings.Fields(ev.Snippet), " ")
		if cleaned != "" {
			snippets = append(snippets, cleaned)
		}
	}
	return snippets
}

func cleanText(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

func evidenceTitle(ev signals.Evidence, fallback string) string {
	if ev.Title != "" {
		return ev.Title
	}
	return fallback
}

func dedupe(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, value := range values {
		if !seen[value] {
			seen[value] = true
			out = append(out, value)
		}
	}
	return out
}

func head[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
