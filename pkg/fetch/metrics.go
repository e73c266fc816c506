package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the fetch coordinator.
var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "batchdash_fetches_total",
		Help: "Total resource requests issued by trigger",
	}, []string{"trigger"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "batchdash_fetch_duration_seconds",
		Help:    "Resource request duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	fetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batchdash_fetch_errors_total",
		Help: "Total applied resource requests that failed",
	})

	dedupJoinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batchdash_fetch_dedup_joins_total",
		Help: "Total triggers that joined a request already in flight",
	})

	discardedResultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batchdash_fetch_discarded_results_total",
		Help: "Total results discarded because a newer request was applied",
	})

	liveEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "batchdash_fetch_live_entries",
		Help: "Number of keys watched or in flight",
	})
)
