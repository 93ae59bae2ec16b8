package signals

import (
	"context"
	"fmt"
	"strings"

	"github.com/joshuarweaver/brieforge/internal/campaign"
	"github.com/joshuarweaver/brieforge/pkg/llm"
	"github.com/joshuarweaver/brieforge/pkg/logging"
)

const queryGenSystemPrompt = "You are an elite marketing intelligence researcher. " +
	"Craft concise, high-intent search inputs tailored to the specified platform. " +
	"Return ONLY a JSON array of strings."

// QueryBuilder generates platform-specific search queries with an LLM,
// falling back to the cartridge's static defaults when the model is
// unavailable or returns malformed output.
type QueryBuilder struct {
	client llm.Client
	logger logging.Logger
}

func NewQueryBuilder(client llm.Client, logger logging.Logger) *QueryBuilder {
	return &QueryBuilder{client: client, logger: logger}
}

// Generate returns up to limit queries for the cartridge. Never fails: any
// LLM or parse error degrades to the cartridge's default query strategy.
func (b *QueryBuilder) Generate(ctx context.Context, cartridge Cartridge, brief campaign.Brief, limit int) []string {
	if limit <= 0 {
		limit = maxQueriesPerCartridge
	}
	fallback := head(cartridge.DefaultQueries(brief), limit)
	if b == nil || b.client == nil {
		return fallback
	}

	resp, err := b.client.Generate(ctx, llm.Request{
		Prompt:       buildQueryPrompt(cartridge, brief, limit),
		SystemPrompt: queryGenSystemPrompt,
		MaxTokens:    800,
		Temperature:  0.4,
	})
	if err != nil {
		if b.logger != nil {
			b.logger.WithError(err).WithField("cartridge", cartridge.Name).Warn("LLM query generation failed, using defaults")
		}
		return fallback
	}

	queries, err := llm.ExtractStringArray(resp.Content)
	if err != nil || len(queries) == 0 {
		if b.logger != nil {
			b.logger.WithField("cartridge", cartridge.Name).Warn("LLM query output unparseable, using defaults")
		}
		return fallback
	}
	return head(queries, limit)
}

func buildQueryPrompt(cartridge Cartridge, brief campaign.Brief, limit int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate up to %d distinct search inputs for the %s platform using the data below. ", limit, cartridge.Platform)
	sb.WriteString("Each search input should be between 4 and 9 words, avoid boolean operators unless critical, ")
	sb.WriteString("and focus on high-signal discoveries that support the intent.\n\n")
	fmt.Fprintf(&sb, "Cartridge: %s\n", cartridge.Name)
	fmt.Fprintf(&sb, "Intent: %s\n", cartridge.Intent)
	fmt.Fprintf(&sb, "Goal: %s\n", orNotSpecified(brief.Goal))
	fmt.Fprintf(&sb, "Offer: %s\n", orNotSpecified(brief.Offer))
	fmt.Fprintf(&sb, "Primary audiences:\n%s\n", formatPromptList(brief.Audiences))
	fmt.Fprintf(&sb, "Key competitors:\n%s\n\n", formatPromptList(brief.Competitors))
	sb.WriteString("Output: JSON array of unique strings, ordered by priority.\n")
	sb.WriteString("No commentary, markdown, or code fences.")
	return sb.String()
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}

func formatPromptList(items []string) string {
	var lines []string
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			lines = append(lines, "- "+item)
		}
	}
	if len(lines) == 0 {
		return "- Not specified"
	}
	return strings.Join(lines, "\n")
}
