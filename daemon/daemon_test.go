package daemon

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sysmond.sh/collector"
	"sysmond.sh/internal/serrors"
	"sysmond.sh/metrics"
)

func testDaemon(t *testing.T, source collector.SnapshotSource) *Daemon {
	t.Helper()

	cfg := &Config{
		CollectionInterval: "10ms",
		CacheDuration:      "1s",
		HistorySize:        100,
		HistoryDuration:    "1h",
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &Daemon{
		config:     cfg,
		collector:  collector.NewCachedCollector(source, cfg.GetCacheDuration(), slog.Default()),
		calculator: metrics.NewCalculator(cfg.GetHistorySize(), cfg.GetHistoryDuration()),
		logger:     slog.Default(),
		ctx:        ctx,
		cancel:     cancel,
		stopCh:     make(chan struct{}),
	}
}

func TestPollFeedsCalculator(t *testing.T) {
	source := collector.NewMockSource()
	d := testDaemon(t, source)

	d.poll(context.Background())

	stats, err := d.Calculator().CalculateStats(metrics.MetricCPU)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SampleCount)
	assert.Equal(t, 42.5, stats.Current)

	stats, err = d.Calculator().CalculateStats(metrics.MetricMemory)
	require.NoError(t, err)
	assert.Equal(t, 50.0, stats.Current)

	names := d.Calculator().Metrics()
	assert.Contains(t, names, "disk:/")
	assert.Contains(t, names, "disk:/data")
}

func TestPollSkipsFailedSnapshot(t *testing.T) {
	source := collector.NewMockSource()
	source.Errs[collector.KindCPU] = serrors.ErrSourceUnavailable
	d := testDaemon(t, source)

	d.poll(context.Background())

	assert.Empty(t, d.Calculator().Metrics())
}

func TestStartStop(t *testing.T) {
	source := collector.NewMockSource()
	d := testDaemon(t, source)

	done := make(chan error, 1)
	go func() { done <- d.Start() }()

	// Let at least the immediate poll land.
	time.Sleep(50 * time.Millisecond)
	d.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("daemon did not stop")
	}

	stats, err := d.Calculator().CalculateStats(metrics.MetricCPU)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.SampleCount, 1)
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}

	assert.Equal(t, 5*time.Second, cfg.GetCollectionInterval())
	assert.Equal(t, time.Second, cfg.GetCacheDuration())
	assert.Equal(t, 1000, cfg.GetHistorySize())
	assert.Equal(t, time.Hour, cfg.GetHistoryDuration())
	assert.Equal(t, 2.0, cfg.GetAnomalyThreshold())
	assert.Equal(t, 10, cfg.GetBatchSize())
	assert.Equal(t, "info", cfg.GetLogLevel())
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("SYSMOND_COLLECTION_INTERVAL", "30s")
	t.Setenv("SYSMOND_HISTORY_SIZE", "250")

	cfg := &Config{CollectionInterval: "5s", HistorySize: 100}
	cfg.applyEnvOverrides()

	assert.Equal(t, 30*time.Second, cfg.GetCollectionInterval())
	assert.Equal(t, 250, cfg.GetHistorySize())
}

func TestConfigMalformedDuration(t *testing.T) {
	cfg := &Config{CollectionInterval: "not-a-duration"}
	assert.Equal(t, 5*time.Second, cfg.GetCollectionInterval())
}

func TestStopTwice(t *testing.T) {
	source := collector.NewMockSource()
	d := testDaemon(t, source)

	done := make(chan error, 1)
	go func() { done <- d.Start() }()

	time.Sleep(20 * time.Millisecond)
	d.Stop()
	d.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestAnomalyScanUsesConfiguredThreshold(t *testing.T) {
	source := collector.NewMockSource()
	d := testDaemon(t, source)
	d.config.AnomalyThreshold = 1.0

	for i := 0; i < 20; i++ {
		d.calculator.AddData(metrics.MetricCPU, 10.0)
		d.calculator.AddData(metrics.MetricMemory, 40.0)
	}
	d.calculator.AddData(metrics.MetricCPU, 95.0)

	found := d.checkAnomalies()
	require.Contains(t, found, metrics.MetricCPU)
	assert.Equal(t, 95.0, found[metrics.MetricCPU][0].Value)
	assert.NotContains(t, found, metrics.MetricMemory)

	// A looser threshold stops flagging the same spike.
	d.config.AnomalyThreshold = 10.0
	assert.Empty(t, d.checkAnomalies())
}

func TestConfigMalformedEnvDurationKeepsFileValue(t *testing.T) {
	t.Setenv("SYSMOND_CACHE_DURATION", "not-a-duration")

	cfg := &Config{CacheDuration: "2s"}
	cfg.applyEnvOverrides()

	assert.Equal(t, 2*time.Second, cfg.GetCacheDuration())
}
