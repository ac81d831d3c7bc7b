package match

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speedy_match_cache_lookups_total",
			Help: "Match list cache lookups by result",
		},
		[]string{"result"},
	)

	rankOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speedy_match_rank_outcomes_total",
			Help: "Pairwise rank evaluations by deciding gate",
		},
		[]string{"gate"},
	)

	pipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "speedy_match_pipeline_duration_seconds",
			Help:    "Time spent building a match list",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"path"},
	)

	resultSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "speedy_match_result_size",
			Help:    "Number of candidates returned per match list",
			Buckets: prometheus.LinearBuckets(0, 80, 10),
		},
	)
)

const (
	pathFull   = "full"
	pathCached = "cached"
)
