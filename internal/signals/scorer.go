package signals

import (
	"math"
	"strings"

	"github.com/joshuarweaver/brieforge/internal/campaign"
)

// Relevance weights. These are load-bearing for downstream expectations:
// changing any of them changes every stored score, so treat the block as a
// versioned constant table.
const (
	goalWeight       = 0.25
	offerWeight      = 0.30
	audienceWeight   = 0.20
	competitorWeight = 0.25
	titleBonus       = 0.10

	// A title hit counts 1.5x a snippet hit.
	titleMatchWeight   = 0.6
	snippetMatchWeight = 0.4

	// Words this short ("a", "the", "for") carry no signal.
	minKeywordLen = 4

	// At least this many goal/offer terms in the title earns the flat bonus.
	titleBonusThreshold = 2
)

// Score rates one evidence item against a campaign brief, returning a value
// in [0, 1]. Deterministic, no side effects; missing brief fields contribute
// zero. All matching is case-insensitive substring matching.
func Score(ev Evidence, brief campaign.Brief) float64 {
	title := strings.ToLower(ev.Title)
	snippet := strings.ToLower(ev.Snippet)
	combined := title + " " + snippet

	score := 0.0

	if brief.Goal != "" {
		score += keywordMatch(keywords(brief.Goal), title, snippet) * goalWeight
	}
	if brief.Offer != "" {
		score += keywordMatch(keywords(brief.Offer), title, snippet) * offerWeight
	}

	// An evidence item need only match one target segment, so take the best
	// audience rather than accumulating.
	if len(brief.Audiences) > 0 {
		best := 0.0
		for _, audience := range brief.Audiences {
			if m := keywordMatch(keywords(audience), title, snippet); m > best {
				best = m
			}
		}
		score += best * audienceWeight
	}

	if len(brief.Competitors) > 0 {
		matches := 0
		for _, competitor := range brief.Competitors {
			name := strings.ToLower(strings.TrimSpace(competitor))
			if name != "" && strings.Contains(combined, name) {
				matches++
			}
		}
		ratio := math.Min(float64(matches)/float64(len(brief.Competitors)), 1.0)
		score += ratio * competitorWeight
	}

	// Reward evidence whose headline itself is on-topic.
	keyTerms := append(keywords(brief.Goal), keywords(brief.Offer)...)
	inTitle := 0
	for _, term := range keyTerms {
		if strings.Contains(title, term) {
			inTitle++
		}
	}
	if inTitle >= titleBonusThreshold {
		score += titleBonus
	}

	return math.Min(score, 1.0)
}

// keywords splits text into lower-cased words long enough to be meaningful.
func keywords(text string) []string {
	var out []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len(word) >= minKeywordLen {
			out = append(out, word)
		}
	}
	return out
}

// keywordMatch computes the title/snippet weighted hit ratio for a keyword
// list. Each side is normalized to the number of keywords checked, so one
// factor never exceeds 1.0.
func keywordMatch(kws []string, title, snippet string) float64 {
	if len(kws) == 0 {
		return 0.0
	}
	titleMatches := 0
	snippetMatches := 0
	for _, kw := range kws {
		if strings.Contains(title, kw) {
			titleMatches++
		}
		if strings.Contains(snippet, kw) {
			snippetMatches++
		}
	}
	n := float64(len(kws))
	return float64(titleMatches)/n*titleMatchWeight + float64(snippetMatches)/n*snippetMatchWeight
}
