package enrich

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/joshuarweaver/brieforge/internal/audit"
	"github.com/joshuarweaver/brieforge/internal/campaign"
	"github.com/joshuarweaver/brieforge/internal/signals"
	"github.com/joshuarweaver/brieforge/pkg/logging"
)

// Summary reports the outcome of one enrichment run. Processed is always
// Created+Skipped.
type Summary struct {
	CampaignID string `json:"campaign_id"`
	Created    int    `json:"created"`
	Skipped    int    `json:"skipped"`
	Processed  int    `json:"processed"`
}

// Service enriches a campaign's signals. Re-running is cheap: signals with an
// existing semantic enrichment are skipped, never rewritten.
type Service struct {
	engine    Engine
	campaigns campaign.Store
	signals   signals.Store
	store     Store
	auditor   audit.Logger
	logger    logging.Logger
}

func NewService(engine Engine, campaigns campaign.Store, sigs signals.Store, store Store, auditor audit.Logger, logger logging.Logger) *Service {
	return &Service{
		engine:    engine,
		campaigns: campaigns,
		signals:   sigs,
		store:     store,
		auditor:   auditor,
		logger:    logger,
	}
}

// EnrichCampaign derives and persists a semantic enrichment for every signal
// of the campaign that does not already carry one.
func (s *Service) EnrichCampaign(ctx context.Context, campaignID, workspaceID, userID string, limit int) (Summary, error) {
	if s == nil || s.store == nil {
		return Summary{}, errors.New("enrichment service unavailable")
	}

	camp, err := s.campaigns.Get(ctx, campaignID, workspaceID)
	if err != nil {
		return Summary{}, fmt.Errorf("load campaign: %w", err)
	}

	sigs, err := s.signals.ListByCampaign(ctx, camp.ID, limit)
	if err != nil {
		return Summary{}, fmt.Errorf("list signals: %w", err)
	}

	summary := Summary{CampaignID: camp.ID}
	for _, sig := range sigs {
		exists, err := s.store.ExistsSemantic(ctx, sig.ID)
		if err != nil {
			return Summary{}, fmt.Errorf("check enrichment for signal %s: %w", sig.ID, err)
		}
		if exists {
			summary.Skipped++
			enrichmentsSkippedTotal.Inc()
			continue
		}

		enrichment := s.engine.Enrich(sig)
		if _, err := s.store.Save(ctx, enrichment); err != nil {
			return Summary{}, fmt.Errorf("save enrichment for signal %s: %w", sig.ID, err)
		}
		summary.Created++
		enrichmentsCreatedTotal.Inc()
	}
	summary.Processed = summary.Created + summary.Skipped

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"campaign_id": camp.ID,
			"created":     summary.Created,
			"skipped":     summary.Skipped,
		}).Info("Campaign signals enriched")
	}

	if s.auditor != nil {
		if err := s.auditor.Record(ctx, audit.Event{
			WorkspaceID: workspaceID,
			UserID:      userID,
			EventType:   "signals.enriched",
			Source:      "brieforge",
			Details: map[string]interface{}{
				"campaign_id": camp.ID,
				"created":     summary.Created,
				"skipped":     summary.Skipped,
				"processed":   summary.Processed,
			},
		}); err != nil && s.logger != nil {
			s.logger.WithError(err).Warn("Failed to record enrichment audit event")
		}
	}

	return summary, nil
}
