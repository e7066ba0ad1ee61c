package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks pages fetched from the product feed.
	FeedPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_pages_total",
			Help: "Total number of feed pages fetched (by channel, country and outcome).",
		},
		[]string{"channel", "country", "status"},
	)

	// Tracks channel ingestions that were aborted, by failure stage.
	IngestFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_failures_total",
			Help: "Number of aborted channel ingestions (by channel, country and stage).",
		},
		[]string{"channel", "country", "stage"},
	)

	// Size of the last successfully replaced snapshot per collection.
	SnapshotProducts = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "snapshot_products",
			Help: "Product count of the most recent snapshot replace per collection.",
		},
		[]string{"collection"},
	)

	// Measures duration of full refresh cycles.
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refresh_cycle_duration_seconds",
			Help:    "Duration of full refresh cycles in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12), // 0.5s → ~34m
		},
	)

	// Measures duration of image probe requests.
	ImageProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_probe_duration_seconds",
			Help:    "Duration of image service probe requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
	)

	NATSPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_publish_errors_total",
			Help: "Number of NATS publish failures",
		},
		[]string{"subject"},
	)
)

func IncFeedPage(channel, country, status string) {
	FeedPagesTotal.WithLabelValues(channel, country, status).Inc()
}

func IncIngestFailure(channel, country, stage string) {
	IngestFailuresTotal.WithLabelValues(channel, country, stage).Inc()
}

// ObserveDuration records the time elapsed since start on a histogram.
func ObserveDuration(h prometheus.Histogram, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}
