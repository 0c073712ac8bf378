// internal/pkg/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Recommendations served, labelled by which branch produced them.
	RecommendationsServed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planwise_recommendations_total",
		Help: "Total recommendations served, by reason",
	}, []string{"reason"})

	// Cache hits for precomputed recommendation lists.
	RecommendationCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planwise_recommendation_cache_hits_total",
		Help: "Total recommendation cache hits",
	})

	// Duration of full model rebuilds (dataset load excluded).
	ModelBuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planwise_model_build_duration_seconds",
		Help:    "Duration of recommendation model rebuilds",
		Buckets: prometheus.DefBuckets,
	})
)

func Init() {
	prometheus.MustRegister(
		RecommendationsServed,
		RecommendationCacheHits,
		ModelBuildDuration,
	)
}

func CountRecommendation(reason string) {
	RecommendationsServed.WithLabelValues(reason).Inc()
}

func CountCacheHit() {
	RecommendationCacheHits.Inc()
}

func ObserveModelBuild(d time.Duration) {
	ModelBuildDuration.Observe(d.Seconds())
}
