package blueprint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/joshuarweaver/brieforge/internal/audit"
	"github.com/joshuarweaver/brieforge/internal/campaign"
	"github.com/joshuarweaver/brieforge/internal/enrich"
	"github.com/joshuarweaver/brieforge/internal/signals"
	"github.com/joshuarweaver/brieforge/pkg/llm"
	"github.com/joshuarweaver/brieforge/pkg/logging"
)

const defaultSignalLimit = 75

// Options tunes one generation run. UseLLM nil means the service default.
type Options struct {
	Persist bool
	UseLLM  *bool
}

// Service generates campaign blueprints. LLM refinement is best-effort: any
// model failure falls back to the deterministic rule-based document, while
// persistence failures abort the run.
type Service struct {
	campaigns   campaign.Store
	signals     signals.Store
	enrichments enrich.Store
	store       Store
	llmClient   llm.Client
	auditor     audit.Logger
	logger      logging.Logger

	signalLimit   int
	useLLMDefault bool
	llmMaxTokens  int
}

func NewService(
	campaigns campaign.Store,
	sigs signals.Store,
	enrichments enrich.Store,
	store Store,
	llmClient llm.Client,
	auditor audit.Logger,
	logger logging.Logger,
	signalLimit int,
	useLLMDefault bool,
	llmMaxTokens int,
) *Service {
	if signalLimit <= 0 {
		signalLimit = defaultSignalLimit
	}
	return &Service{
		campaigns:     campaigns,
		signals:       sigs,
		enrichments:   enrichments,
		store:         store,
		llmClient:     llmClient,
		auditor:       auditor,
		logger:        logger,
		signalLimit:   signalLimit,
		useLLMDefault: useLLMDefault,
		llmMaxTokens:  llmMaxTokens,
	}
}

// Generate builds a blueprint for the campaign and persists it as a new
// immutable artifact when opts.Persist is set.
func (s *Service) Generate(ctx context.Context, campaignID, workspaceID, userID string, opts Options) (Blueprint, error) {
	if s == nil || s.store == nil {
		return Blueprint{}, errors.New("blueprint service unavailable")
	}

	camp, err := s.campaigns.Get(ctx, campaignID, workspaceID)
	if err != nil {
		return Blueprint{}, fmt.Errorf("load campaign: %w", err)
	}

	sigs, err := s.signals.ListTopByRelevance(ctx, camp.ID, s.signalLimit)
	if err != nil {
		return Blueprint{}, fmt.Errorf("list signals: %w", err)
	}

	signalIDs := make([]string, 0, len(sigs))
	for _, sig := range sigs {
		signalIDs = append(signalIDs, sig.ID)
	}
	enrichments, err := s.enrichments.ListForSignals(ctx, signalIDs)
	if err != nil {
		return Blueprint{}, fmt.Errorf("list enrichments: %w", err)
	}

	analyses, err := s.store.ListCompletedAnalyses(ctx, camp.ID, 5)
	if err != nil {
		return Blueprint{}, fmt.Errorf("list analyses: %w", err)
	}
	strategicBrief, err := s.store.LatestStrategicBrief(ctx, camp.ID)
	if err != nil {
		return Blueprint{}, fmt.Errorf("load strategic brief: %w", err)
	}

	generatedAt := time.Now().UTC().Format(time.RFC3339)
	ruleBased := buildRuleBased(camp, sigs, enrichments, generatedAt)
	preview := buildFallbackPreview(ruleBased)

	useLLM := s.useLLMDefault
	if opts.UseLLM != nil {
		useLLM = *opts.UseLLM
	}

	final := ruleBased
	final.Metadata = Metadata{
		GenerationMethod: "rule_based",
		LLMUsed:          false,
		RuleBasedPreview: preview,
	}

	if useLLM {
		doc, meta, llmErr := generateLLM(ctx, s.llmClient, camp, sigs, enrichments, analyses, strategicBrief, ruleBased, s.llmMaxTokens)
		if llmErr != nil {
			if s.logger != nil {
				s.logger.WithError(llmErr).WithField("campaign_id", camp.ID).
					Warn("LLM blueprint generation failed, using rule-based fallback")
			}
			final.Metadata.LLMError = llmErr.Error()
		} else {
			final = normalize(doc, ruleBased)
			final.Metadata = Metadata{
				GenerationMethod: "llm",
				LLMUsed:          true,
				LLMProvider:      meta.Provider,
				LLMModel:         meta.Model,
				TokensUsed:       meta.TokensUsed,
				RuleBasedPreview: preview,
			}
			blueprintLLMTokens.Add(float64(meta.TokensUsed))
		}
	}
	blueprintsGeneratedTotal.WithLabelValues(final.Metadata.GenerationMethod).Inc()

	var artifactID string
	if opts.Persist {
		artifact, err := s.store.SaveArtifact(ctx, Artifact{
			CampaignID: camp.ID,
			Summary:    final.Summary,
			Blueprint:  final,
		})
		if err != nil {
			return Blueprint{}, fmt.Errorf("persist blueprint: %w", err)
		}
		artifactID = artifact.ID
		final.ArtifactID = &artifactID
		final.Metadata.Persisted = true
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"campaign_id":       camp.ID,
			"artifact_id":       artifactID,
			"generation_method": final.Metadata.GenerationMethod,
			"signals":           len(sigs),
		}).Info("Campaign blueprint generated")
	}

	if s.auditor != nil {
		if err := s.auditor.Record(ctx, audit.Event{
			WorkspaceID: workspaceID,
			UserID:      userID,
			EventType:   "campaign.blueprint_generated",
			Source:      "brieforge",
			Details: map[string]interface{}{
				"campaign_id":       camp.ID,
				"artifact_id":       artifactID,
				"generation_method": final.Metadata.GenerationMethod,
			},
		}); err != nil && s.logger != nil {
			s.logger.WithError(err).Warn("Failed to record blueprint audit event")
		}
	}

	return final, nil
}
