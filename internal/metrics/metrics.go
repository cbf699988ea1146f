// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topicmatch_match_queries_total",
			Help: "Total number of match queries by outcome",
		},
		[]string{"outcome"},
	)

	MatchQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "topicmatch_match_query_duration_seconds",
			Help:    "Duration of match queries",
			Buckets: prometheus.DefBuckets,
		},
	)

	CandidatesEvaluated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "topicmatch_candidates_evaluated",
			Help:    "Number of candidates scored per match query",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	CompatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "topicmatch_compatibility_scores",
			Help:    "Distribution of computed compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	ScoreCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topicmatch_score_cache_lookups_total",
			Help: "Score cache lookups by layer and result",
		},
		[]string{"layer", "result"},
	)

	RecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "topicmatch_recompute_duration_seconds",
			Help:    "Duration of per-user score recomputation",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	RecomputeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "topicmatch_recompute_failures_total",
			Help: "Number of failed score recomputations",
		},
	)

	PreferencesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "topicmatch_preferences_dropped_total",
			Help: "Preferences dropped on save because the topic does not exist",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topicmatch_http_requests_total",
			Help: "HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "topicmatch_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

const (
	LayerRedis      = "redis"
	LayerScoreCache = "score_cache"

	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultStale = "stale"
	ResultError = "error"
)
