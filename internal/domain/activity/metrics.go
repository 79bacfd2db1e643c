package activity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricGenerationsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pardiary",
		Name:      "activity_generations_started_total",
		Help:      "Number of activity detail generations started.",
	})
	metricGenerationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pardiary",
		Name:      "activity_generations_failed_total",
		Help:      "Number of activity detail generations that ended in an error.",
	})
	metricGenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pardiary",
		Name:      "activity_generation_duration_seconds",
		Help:      "Latency of activity detail generation including place enrichment.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	})
	metricPrefetchSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pardiary",
		Name:      "activity_prefetch_skipped_total",
		Help:      "Prefetch candidates skipped because they were complete or in flight.",
	})
	metricPersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pardiary",
		Name:      "activity_cache_write_failures_total",
		Help:      "Completed details that could not be written to the durable cache.",
	})
)

func recordGenerationStart() {
	metricGenerationsStarted.Inc()
}

func recordGenerationEnd(seconds float64, failed bool) {
	metricGenerationDuration.Observe(seconds)
	if failed {
		metricGenerationsFailed.Inc()
	}
}

func recordPrefetchSkipped(count int) {
	if count > 0 {
		metricPrefetchSkipped.Add(float64(count))
	}
}

func recordPersistFailure() {
	metricPersistFailures.Inc()
}
