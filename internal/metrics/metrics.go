package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for GenerateRequests.
const (
	OutcomeCached    = "cached"
	OutcomeGenerated = "generated"
	OutcomeError     = "error"
)

// Source labels for CacheHits.
const (
	SourceRedis = "redis"
	SourceStore = "store"
)

var (
	// GenerateRequests counts generate-quiz runs by outcome.
	GenerateRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wikiquiz_generate_requests_total",
		Help: "Generate-quiz requests by outcome.",
	}, []string{"outcome"})

	// CacheHits counts cache hits by which layer answered.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wikiquiz_cache_hits_total",
		Help: "Cache hits by source layer.",
	}, []string{"source"})

	// GenerationFailures counts pipeline failures by stage.
	GenerationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wikiquiz_generation_failures_total",
		Help: "Pipeline failures by stage.",
	}, []string{"stage"})
)
