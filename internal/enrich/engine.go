// Package enrich derives semantic metadata (entities, sentiment, trend,
// language features) from the text already stored on a signal. The engine is
// pure: it never touches the network or the database.
package enrich

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/joshuarweaver/brieforge/internal/signals"
)

// EnrichmentTypeSemantic is the only enrichment type currently produced.
const EnrichmentTypeSemantic = "semantic"

// Fixed sentiment lexicons, matched as substrings of the lower-cased combined
// evidence text. Each word contributes at most one hit regardless of how often
// it appears.
var (
	positiveWords = []string{"win", "growth", "increase", "success", "love", "best", "improve"}
	negativeWords = []string{"problem", "pain", "struggle", "issue", "hate", "decline", "risk", "friction", "bottleneck"}
)

// entityPattern is a heuristic proper-noun detector: word-initial runs of
// capitalized words. Sentence-initial capitals are accepted as false
// positives; mid-word capitals ("iPhone") are not.
var entityPattern = regexp.MustCompile(`\b[A-Z][a-zA-Z0-9]+(?:\s+[A-Z][a-zA-Z0-9]+)*`)

var topicWordPattern = regexp.MustCompile(`[a-zA-Z]{4,}`)

const (
	maxEntities          = 15
	minEntityLen         = 4
	maxKeyTopics         = 6
	maxPainPoints        = 5
	maxFeaturePatterns   = 5
	defaultMaxPatterns   = 10
	phraseWords          = 3
	minPhraseLen         = 11
	trendDecayHours      = 168.0 // full freshness decay over one week
	trendRelevanceWeight = 0.7
	trendFreshnessWeight = 0.3
	defaultPrimaryPain   = "efficiency"
)

// Features is the derived feature set stored on an enrichment.
type Features struct {
	AvgSnippetLength float64  `json:"avg_snippet_length"`
	EvidenceCount    int      `json:"evidence_count"`
	RelevanceScore   float64  `json:"relevance_score"`
	PrimaryPain      string   `json:"primary_pain"`
	PainPoints       []string `json:"pain_points"`
	LanguagePatterns []string `json:"language_patterns"`
	KeyTopics        []string `json:"key_topics"`
}

// Enrichment is derived metadata for one signal.
type Enrichment struct {
	ID             string    `json:"id"`
	SignalID       string    `json:"signal_id"`
	EnrichmentType string    `json:"enrichment_type"`
	Entities       []string  `json:"entities"`
	Sentiment      float64   `json:"sentiment"`
	TrendScore     float64   `json:"trend_score"`
	Features       Features  `json:"features"`
	CreatedAt      time.Time `json:"created_at"`
}

// Engine computes enrichments. MaxLanguagePatterns bounds the pattern list
// before callers trim further; zero means the default of 10.
type Engine struct {
	MaxLanguagePatterns int
}

// Enrich derives the semantic enrichment for a signal. Deterministic for a
// fixed signal and clock (trend blending reads the current time).
func (e Engine) Enrich(sig signals.Signal) Enrichment {
	snippets := cleanedSnippets(sig)
	maxPatterns := e.MaxLanguagePatterns
	if maxPatterns <= 0 {
		maxPatterns = defaultMaxPatterns
	}

	painPoints := extractPainPoints(snippets)
	primaryPain := defaultPrimaryPain
	if len(painPoints) > 0 {
		primaryPain = painPoints[0]
	}

	patterns := languagePatterns(snippets, maxPatterns)
	if len(patterns) > maxFeaturePatterns {
		patterns = patterns[:maxFeaturePatterns]
	}

	return Enrichment{
		SignalID:       sig.ID,
		EnrichmentType: EnrichmentTypeSemantic,
		Entities:       extractEntities(sig),
		Sentiment:      sentimentScore(sig),
		TrendScore:     trendScore(sig, time.Now().UTC()),
		Features: Features{
			AvgSnippetLength: avgSnippetLength(sig.Evidence),
			EvidenceCount:    len(sig.Evidence),
			RelevanceScore:   sig.RelevanceScore,
			PrimaryPain:      primaryPain,
			PainPoints:       painPoints,
			LanguagePatterns: patterns,
			KeyTopics:        keyTopics(snippets),
		},
	}
}

// extractEntities scans each evidence title+snippet for capitalized-word
// runs, deduplicates in first-seen order, keeps entries longer than three
// characters, and caps the result at 15.
func extractEntities(sig signals.Signal) []string {
	seen := make(map[string]bool)
	var entities []string
	for _, ev := range sig.Evidence {
		text := ev.Title + " " + ev.Snippet
		for _, match := range entityPattern.FindAllString(text, -1) {
			if len(match) < minEntityLen || seen[match] {
				continue
			}
			seen[match] = true
			entities = append(entities, match)
			if len(entities) >= maxEntities {
				return entities
			}
		}
	}
	return entities
}

// sentimentScore counts which lexicon words appear in the combined evidence
// text and returns (pos-neg)/max(pos+neg, 1) clamped to [-1, 1]. Exactly 0.0
// when no lexicon word appears.
func sentimentScore(sig signals.Signal) float64 {
	var combined strings.Builder
	for _, ev := range sig.Evidence {
		combined.WriteString(strings.ToLower(ev.Title))
		combined.WriteString(" ")
		combined.WriteString(strings.ToLower(ev.Snippet))
		combined.WriteString(" ")
	}
	text := combined.String()

	pos := 0
	for _, word := range positiveWords {
		if strings.Contains(text, word) {
			pos++
		}
	}
	neg := 0
	for _, word := range negativeWords {
		if strings.Contains(text, word) {
			neg++
		}
	}
	if pos == 0 && neg == 0 {
		return 0.0
	}
	total := pos + neg
	if total < 1 {
		total = 1
	}
	score := float64(pos-neg) / float64(total)
	return math.Max(-1.0, math.Min(1.0, score))
}

// trendScore blends the signal's stored relevance with collection freshness.
// Without a parseable collected_at provenance timestamp the relevance passes
// through unchanged.
func trendScore(sig signals.Signal, now time.Time) float64 {
	base := sig.RelevanceScore
	collectedAt, ok := sig.Provenance["collected_at"].(string)
	if !ok || collectedAt == "" {
		return base
	}
	ts, err := time.Parse(time.RFC3339, collectedAt)
	if err != nil {
		return base
	}
	ageHours := now.Sub(ts).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	freshness := math.Max(0, 1-math.Min(ageHours/trendDecayHours, 1))
	return round4(base*trendRelevanceWeight + freshness*trendFreshnessWeight)
}

func cleanedSnippets(sig signals.Signal) []string {
	var out []string
	for _, ev := range sig.Evidence {
		cleaned := strings.Join(strings.Fields(ev.Snippet), " ")
		if cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// keyTopics ranks lowercase words of length >= 4 by frequency, breaking ties
// by first appearance, and returns up to 6.
func keyTopics(snippets []string) []string {
	counts := make(map[string]int)
	var order []string
	for _, snippet := range snippets {
		for _, word := range topicWordPattern.FindAllString(strings.ToLower(snippet), -1) {
			if counts[word] == 0 {
				order = append(order, word)
			}
			counts[word]++
		}
	}
	ranked := rankByCount(order, counts, 8)
	if len(ranked) > maxKeyTopics {
		ranked = ranked[:maxKeyTopics]
	}
	return ranked
}

// extractPainPoints flags whole snippets containing a negative-lexicon word,
// deduplicated in first-seen order, capped at 5.
func extractPainPoints(snippets []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, snippet := range snippets {
		lower := strings.ToLower(snippet)
		for _, word := range negativeWords {
			if strings.Contains(lower, word) {
				if !seen[snippet] {
					seen[snippet] = true
					out = append(out, snippet)
				}
				break
			}
		}
		if len(out) >= maxPainPoints {
			break
		}
	}
	return out
}

// languagePatterns extracts non-overlapping 3-word phrases (stride 3) longer
// than 10 characters and ranks them by frequency.
func languagePatterns(snippets []string, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, snippet := range snippets {
		words := strings.Fields(strings.ToLower(snippet))
		for i := 0; i+phraseWords <= len(words); i += phraseWords {
			phrase := strings.Join(words[i:i+phraseWords], " ")
			if len(phrase) < minPhraseLen {
				continue
			}
			if counts[phrase] == 0 {
				order = append(order, phrase)
			}
			counts[phrase]++
		}
	}
	return rankByCount(order, counts, limit)
}

// avgSnippetLength averages raw snippet lengths over every evidence item,
// counting empty snippets in the denominator.
func avgSnippetLength(evidence []signals.Evidence) float64 {
	if len(evidence) == 0 {
		return 0.0
	}
	total := 0
	for _, ev := range evidence {
		total += len(ev.Snippet)
	}
	return round2(float64(total) / float64(len(evidence)))
}

// rankByCount sorts keys by descending count, preserving first-seen order
// for ties, and returns up to limit.
func rankByCount(order []string, counts map[string]int, limit int) []string {
	ranked := append([]string(nil), order...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
