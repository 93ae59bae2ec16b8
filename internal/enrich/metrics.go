package enrich

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	enrichmentsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "brieforge",
			Name:      "enrichments_created_total",
			Help:      "Total semantic enrichments persisted",
		},
	)

	enrichmentsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "brieforge",
			Name:      "enrichments_skipped_total",
			Help:      "Signals skipped because a semantic enrichment already existed",
		},
	)
)
