package signals

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	signalsCollectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brieforge",
			Name:      "signals_collected_total",
			Help:      "Total signals persisted per source platform",
		},
		[]string{"source"},
	)

	searchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brieforge",
			Name:      "search_requests_total",
			Help:      "Total search API requests",
		},
		[]string{"engine", "status"},
	)

	collectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "brieforge",
			Name:      "collection_duration_seconds",
			Help:      "Duration of one cartridge collection run in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~50s
		},
		[]string{"cartridge"},
	)

	evidencePerSignal = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "brieforge",
			Name:      "evidence_per_signal",
			Help:      "Number of evidence items extracted per signal",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 10, 15},
		},
	)
)
