package signals

import (
	"encoding/json"
	"time"
)

// Evidence is one discovered item backing a signal. Immutable after scoring
// except for the one-time RelevanceScore assignment.
type Evidence struct {
	Title          string                 `json:"title"`
	Snippet        string                 `json:"snippet"`
	URL            string                 `json:"url"`
	Platform       string                 `json:"platform"`
	PublishedDate  *time.Time             `json:"published_date,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	RelevanceScore float64                `json:"relevance_score"`
}

// Signal is one persisted query execution. RelevanceScore is the arithmetic
// mean of the evidence scores at creation time and is never recomputed.
type Signal struct {
	ID             string                 `json:"id"`
	CampaignID     string                 `json:"campaign_id"`
	Source         string                 `json:"source"`
	SearchMethod   string                 `json:"search_method"`
	Query          string                 `json:"query"`
	Evidence       []Evidence             `json:"evidence"`
	RelevanceScore float64                `json:"relevance_score"`
	Provenance     map[string]interface{} `json:"provenance,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// AggregateRelevance returns the mean of the evidence scores, 0 when empty.
func AggregateRelevance(evidence []Evidence) float64 {
	if len(evidence) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, ev := range evidence {
		sum += ev.RelevanceScore
	}
	return sum / float64(len(evidence))
}

// RawPayload is a raw provider response an extractor decodes.
type RawPayload = json.RawMessage
