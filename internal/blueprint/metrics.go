package blueprint

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blueprintsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brieforge",
			Name:      "blueprints_generated_total",
			Help:      "Total blueprints generated by generation method",
		},
		[]string{"method"},
	)

	blueprintLLMTokens = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "brieforge",
			Name:      "blueprint_llm_tokens_total",
			Help:      "Total LLM tokens consumed by blueprint generation",
		},
	)
)
