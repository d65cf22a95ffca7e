package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sysmond.sh/collector"
	"sysmond.sh/internal/observability"
	"sysmond.sh/metrics"
)

// Daemon polls the cached collector on a fixed interval and feeds each
// snapshot into the metrics calculator. When a metrics address is
// configured it also serves Prometheus metrics over HTTP.
type Daemon struct {
	config     *Config
	collector  collector.SystemCollector
	calculator *metrics.Calculator
	httpServer *http.Server
	logger     *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopCh   chan struct{}
	stopOnce sync.Once
}

func New(cfg *Config, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}

	source, err := collector.NewGopsutilSource(context.Background())
	if err != nil {
		return nil, fmt.Errorf("initialize system source: %w", err)
	}

	cached := collector.NewCachedCollector(source, cfg.GetCacheDuration(), logger)
	calculator := metrics.NewCalculator(cfg.GetHistorySize(), cfg.GetHistoryDuration())

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		config:     cfg,
		collector:  cached,
		calculator: calculator,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		stopCh:     make(chan struct{}),
	}, nil
}

// Collector exposes the daemon's cached collector.
func (d *Daemon) Collector() collector.SystemCollector {
	return d.collector
}

// Calculator exposes the daemon's metrics calculator.
func (d *Daemon) Calculator() *metrics.Calculator {
	return d.calculator
}

// Start runs the poll loop until Stop is called or the context is
// cancelled. The first snapshot is taken immediately rather than one
// interval in.
func (d *Daemon) Start() error {
	interval := d.config.GetCollectionInterval()

	if addr := d.config.GetMetricsAddr(); addr != "" {
		d.startMetricsServer(addr)
	}

	d.logger.Info("Starting collection loop", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.poll(d.ctx)

	for {
		select {
		case <-ticker.C:
			d.poll(d.ctx)
		case <-d.stopCh:
			return nil
		case <-d.ctx.Done():
			// Stop cancels the context too; a requested stop is not
			// an error.
			select {
			case <-d.stopCh:
				return nil
			default:
			}
			return d.ctx.Err()
		}
	}
}

// Stop shuts the poll loop and the metrics endpoint down. Safe to call
// more than once.
func (d *Daemon) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
		d.cancel()

		if d.httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := d.httpServer.Shutdown(shutdownCtx); err != nil {
				d.logger.Warn("Metrics server shutdown", "error", err)
			}
		}
	})
}

// poll takes one snapshot and records its scalar series. Snapshot
// failures are logged and skipped so one bad read does not kill the
// loop.
func (d *Daemon) poll(ctx context.Context) {
	snapshot, err := d.collector.CollectSnapshot(ctx)
	if err != nil {
		d.logger.With("error", err).Error("Snapshot collection failed")
		return
	}

	d.record(snapshot)
	d.checkAnomalies()
}

// checkAnomalies scans the CPU and memory series against the configured
// threshold and logs the most recent flagged point per series.
func (d *Daemon) checkAnomalies() map[string][]metrics.Anomaly {
	threshold := d.config.GetAnomalyThreshold()
	found := make(map[string][]metrics.Anomaly)

	for _, metric := range []string{metrics.MetricCPU, metrics.MetricMemory} {
		anomalies, err := d.calculator.DetectAnomalies(metric, threshold)
		if err != nil || len(anomalies) == 0 {
			continue
		}
		found[metric] = anomalies

		latest := anomalies[len(anomalies)-1]
		d.logger.Warn("Metric anomaly detected",
			"metric", metric,
			"value", latest.Value,
			"threshold", latest.Threshold,
			"severity", latest.Severity.String(),
			"count", len(anomalies))
	}
	return found
}

// record feeds a snapshot's scalar values into the calculator and the
// Prometheus gauges.
func (d *Daemon) record(snapshot *collector.SystemSnapshot) {
	d.calculator.AddData(metrics.MetricCPU, snapshot.CPU.GlobalUsage)
	d.calculator.AddData(metrics.MetricMemory, snapshot.Memory.UsagePercent)

	maxDisk := 0.0
	for _, disk := range snapshot.Disks {
		d.calculator.AddData(metrics.MetricDisk(disk.MountPoint), disk.UsagePercent)
		if disk.UsagePercent > maxDisk {
			maxDisk = disk.UsagePercent
		}
	}

	observability.CPUUsagePercent.Set(snapshot.CPU.GlobalUsage)
	observability.MemoryUsagePercent.Set(snapshot.Memory.UsagePercent)
	observability.DiskUsageMaxPercent.Set(maxDisk)
}

func (d *Daemon) startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	d.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		d.logger.Info("Serving metrics", "addr", addr)
		if err := d.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.With("error", err).Error("Metrics server failed")
		}
	}()
}
