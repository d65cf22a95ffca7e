package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cache metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sysmond_cache_hits_total",
			Help: "Cache hits served without touching the snapshot source",
		},
		[]string{"kind"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sysmond_cache_misses_total",
			Help: "Cache misses that triggered a snapshot source read",
		},
		[]string{"kind"},
	)

	ForceRefreshesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sysmond_force_refreshes_total",
			Help: "Forced refreshes that invalidated every cache slot",
		},
	)

	// Source metrics
	SourceReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sysmond_source_reads_total",
			Help: "Reads issued against the underlying snapshot source",
		},
		[]string{"kind"},
	)

	SourceErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sysmond_source_errors_total",
			Help: "Snapshot source reads that returned an error",
		},
		[]string{"kind"},
	)

	SnapshotDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sysmond_snapshot_duration_seconds",
			Help:    "Full snapshot composition duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Current readings, updated by the daemon poll loop
	CPUUsagePercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sysmond_cpu_usage_percent",
			Help: "Most recent global CPU usage percentage",
		},
	)

	MemoryUsagePercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sysmond_memory_usage_percent",
			Help: "Most recent memory usage percentage",
		},
	)

	DiskUsageMaxPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sysmond_disk_usage_max_percent",
			Help: "Usage percentage of the fullest mounted disk",
		},
	)
)
