package signals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joshuarweaver/brieforge/internal/campaign"
	"github.com/joshuarweaver/brieforge/pkg/logging"
	"github.com/joshuarweaver/brieforge/pkg/searchapi"
)

// CollectionError records one failed cartridge without aborting the run.
type CollectionError struct {
	Cartridge string `json:"cartridge"`
	Error     string `json:"error"`
}

// CollectionSummary reports the outcome of one collection run.
type CollectionSummary struct {
	CampaignID    string            `json:"campaign_id"`
	CartridgesRun int               `json:"cartridges_run"`
	TotalSignals  int               `json:"total_signals"`
	Errors        []CollectionError `json:"errors"`
	Timestamp     time.Time         `json:"timestamp"`
}

// Collector runs cartridges against the search capability and persists the
// scored results as signals.
type Collector struct {
	searcher  searchapi.Searcher
	queries   *QueryBuilder
	campaigns campaign.Store
	store     Store
	logger    logging.Logger

	// maxConcurrent bounds cartridge fan-out. Queries within one cartridge
	// run sequentially to respect provider rate limits.
	maxConcurrent int
}

func NewCollector(searcher searchapi.Searcher, queries *QueryBuilder, campaigns campaign.Store, store Store, logger logging.Logger) *Collector {
	return &Collector{
		searcher:      searcher,
		queries:       queries,
		campaigns:     campaigns,
		store:         store,
		logger:        logger,
		maxConcurrent: 3,
	}
}

// Collect runs the named cartridges (all when names is empty) for a campaign.
// Individual query and cartridge failures are collected, not fatal; a missing
// campaign is.
func (c *Collector) Collect(ctx context.Context, campaignID, workspaceID string, names []string, maxQueries int) (CollectionSummary, error) {
	if c == nil || c.searcher == nil {
		return CollectionSummary{}, errors.New("collector unavailable")
	}
	if maxQueries <= 0 {
		maxQueries = maxQueriesPerCartridge
	}

	camp, err := c.campaigns.Get(ctx, campaignID, workspaceID)
	if err != nil {
		return CollectionSummary{}, fmt.Errorf("load campaign: %w", err)
	}

	var toRun []Cartridge
	if len(names) == 0 {
		toRun = Cartridges()
	} else {
		for _, name := range names {
			if cart, ok := CartridgeByName(name); ok {
				toRun = append(toRun, cart)
			}
		}
	}

	summary := CollectionSummary{
		CampaignID:    campaignID,
		CartridgesRun: len(toRun),
		Errors:        []CollectionError{},
		Timestamp:     time.Now().UTC(),
	}

	type cartridgeResult struct {
		cartridge string
		count     int
		err       error
	}
	results := make([]cartridgeResult, len(toRun))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)
	for i, cart := range toRun {
		i, cart := i, cart
		g.Go(func() error {
			count, runErr := c.runCartridge(gctx, cart, camp, maxQueries)
			results[i] = cartridgeResult{cartridge: cart.Name, count: count, err: runErr}
			// Cartridge failures are reported in the summary, not propagated,
			// so one broken provider does not cancel the others.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CollectionSummary{}, err
	}

	for _, res := range results {
		summary.TotalSignals += res.count
		if res.err != nil {
			summary.Errors = append(summary.Errors, CollectionError{Cartridge: res.cartridge, Error: res.err.Error()})
		}
	}
	return summary, nil
}

func (c *Collector) runCartridge(ctx context.Context, cart Cartridge, camp campaign.Campaign, maxQueries int) (int, error) {
	start := time.Now()
	defer func() {
		collectionDuration.WithLabelValues(cart.Name).Observe(time.Since(start).Seconds())
	}()

	queries := c.queries.Generate(ctx, cart, camp.Brief, maxQueries)
	created := 0
	var lastErr error

	for _, query := range queries {
		raw, err := c.searcher.Search(ctx, cart.Engine, cart.Params(query))
		if err != nil {
			searchRequestsTotal.WithLabelValues(cart.Engine, "error").Inc()
			if c.logger != nil {
				c.logger.WithError(err).WithFields(logging.Fields{
					"cartridge": cart.Name,
					"query":     query,
				}).Warn("Search query failed")
			}
			lastErr = err
			continue
		}
		searchRequestsTotal.WithLabelValues(cart.Engine, "success").Inc()

		evidence := cart.Extract(raw, query)
		for i := range evidence {
			evidence[i].RelevanceScore = Score(evidence[i], camp.Brief)
		}
		evidencePerSignal.Observe(float64(len(evidence)))

		signal := Signal{
			CampaignID:     camp.ID,
			Source:         cart.Platform,
			SearchMethod:   cart.Name,
			Query:          query,
			Evidence:       evidence,
			RelevanceScore: AggregateRelevance(evidence),
			Provenance: map[string]interface{}{
				"collected_at": time.Now().UTC().Format(time.RFC3339),
			},
		}
		if _, err := c.store.Save(ctx, signal); err != nil {
			if c.logger != nil {
				c.logger.WithError(err).WithField("cartridge", cart.Name).Warn("Failed to persist signal")
			}
			lastErr = err
			continue
		}
		signalsCollectedTotal.WithLabelValues(cart.Platform).Inc()
		created++
	}

	return created, lastErr
}
