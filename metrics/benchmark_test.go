package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBenchmarkStableWithinThreshold(t *testing.T) {
	b := NewBenchmark(50.0, 60.0)

	change := b.Compare(54.0, 57.0)
	assert.Equal(t, TrendStable, change.OverallTrend)
	assert.InDelta(t, 8.0, change.CPUChangePercent, 1e-9)
	assert.InDelta(t, -5.0, change.MemoryChangePercent, 1e-9)
}

func TestBenchmarkIncreasing(t *testing.T) {
	b := NewBenchmark(50.0, 60.0)

	change := b.Compare(70.0, 61.0)
	assert.Equal(t, TrendIncreasing, change.OverallTrend)
	assert.InDelta(t, 40.0, change.CPUChangePercent, 1e-9)
}

func TestBenchmarkDecreasing(t *testing.T) {
	b := NewBenchmark(50.0, 60.0)

	change := b.Compare(49.0, 40.0)
	assert.Equal(t, TrendDecreasing, change.OverallTrend)
	assert.InDelta(t, -33.333333, change.MemoryChangePercent, 1e-5)
}

func TestBenchmarkZeroBaseline(t *testing.T) {
	b := NewBenchmark(0, 0)

	change := b.Compare(80.0, 90.0)
	assert.Equal(t, 0.0, change.CPUChangePercent)
	assert.Equal(t, 0.0, change.MemoryChangePercent)
	assert.Equal(t, TrendStable, change.OverallTrend)
}

func TestBenchmarkElapsed(t *testing.T) {
	b := NewBenchmark(10.0, 10.0)
	start := b.baselineTime
	b.now = func() time.Time { return start.Add(90 * time.Second) }

	change := b.Compare(10.0, 10.0)
	assert.Equal(t, 90*time.Second, change.Elapsed)
}

func TestTrendDirectionString(t *testing.T) {
	assert.Equal(t, "stable", TrendStable.String())
	assert.Equal(t, "increasing", TrendIncreasing.String())
	assert.Equal(t, "decreasing", TrendDecreasing.String())
}
