package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sysmond.sh/internal/serrors"
)

// testCalculator returns a calculator whose clock advances by step on
// every AddData call.
func testCalculator(maxSize int, window time.Duration, step time.Duration) *Calculator {
	c := NewCalculator(maxSize, window)
	current := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time {
		current = current.Add(step)
		return current
	}
	return c
}

func TestCalculateStatsScenario(t *testing.T) {
	c := testCalculator(100, time.Hour, time.Second)

	c.AddData(MetricCPU, 25.0)
	c.AddData(MetricCPU, 30.0)
	c.AddData(MetricCPU, 35.0)

	stats, err := c.CalculateStats(MetricCPU)
	require.NoError(t, err)

	assert.Equal(t, 35.0, stats.Current)
	assert.Equal(t, 30.0, stats.Average)
	assert.Equal(t, 25.0, stats.Min)
	assert.Equal(t, 35.0, stats.Max)
	assert.Equal(t, 30.0, stats.Median)
	assert.Equal(t, 3, stats.SampleCount)
}

func TestStatsInvariants(t *testing.T) {
	c := testCalculator(100, time.Hour, time.Second)
	for _, v := range []float64{12.5, 80.0, 45.0, 3.0, 66.6, 51.2} {
		c.AddData(MetricMemory, v)
	}

	stats, err := c.CalculateStats(MetricMemory)
	require.NoError(t, err)

	assert.LessOrEqual(t, stats.Min, stats.Median)
	assert.LessOrEqual(t, stats.Median, stats.Max)
	assert.LessOrEqual(t, stats.Min, stats.Average)
	assert.LessOrEqual(t, stats.Average, stats.Max)
}

func TestStatsConstantSeries(t *testing.T) {
	c := testCalculator(100, time.Hour, time.Second)
	for i := 0; i < 10; i++ {
		c.AddData(MetricCPU, 50.0)
	}

	stats, err := c.CalculateStats(MetricCPU)
	require.NoError(t, err)

	assert.Equal(t, 50.0, stats.Min)
	assert.Equal(t, 50.0, stats.Max)
	assert.Equal(t, 50.0, stats.Median)
	assert.Equal(t, 50.0, stats.Average)
	assert.Equal(t, 0.0, stats.StdDeviation)
}

func TestStatsEvenLengthMedian(t *testing.T) {
	c := testCalculator(100, time.Hour, time.Second)
	for _, v := range []float64{10, 20, 30, 40} {
		c.AddData(MetricCPU, v)
	}

	stats, err := c.CalculateStats(MetricCPU)
	require.NoError(t, err)
	assert.Equal(t, 25.0, stats.Median, "even length takes the mean of the two middle values")
}

func TestUnknownMetric(t *testing.T) {
	c := NewCalculator(100, time.Hour)

	_, err := c.CalculateStats("gpu")
	assert.True(t, serrors.Is(err, serrors.ErrInvalidMetric))

	_, err = c.DetectAnomalies("gpu", 1.0)
	assert.True(t, serrors.Is(err, serrors.ErrInvalidMetric))

	_, err = c.PredictTrend("gpu", time.Minute)
	assert.True(t, serrors.Is(err, serrors.ErrInvalidMetric))

	_, err = c.History("gpu")
	assert.True(t, serrors.Is(err, serrors.ErrInvalidMetric))
}

func TestHistoryCountBound(t *testing.T) {
	c := testCalculator(5, time.Hour, time.Second)
	for i := 0; i < 20; i++ {
		c.AddData(MetricCPU, float64(i))
	}

	points, err := c.History(MetricCPU)
	require.NoError(t, err)
	require.Len(t, points, 5, "count bound must hold, oldest dropped first")
	assert.Equal(t, 15.0, points[0].Value)
	assert.Equal(t, 19.0, points[4].Value)
}

func TestHistoryAgeBound(t *testing.T) {
	// Samples land one minute apart with a five minute window: the
	// retained tail can never hold a point older than the window.
	c := testCalculator(1000, 5*time.Minute, time.Minute)
	for i := 0; i < 30; i++ {
		c.AddData(MetricMemory, float64(i))
	}

	points, err := c.History(MetricMemory)
	require.NoError(t, err)
	require.NotEmpty(t, points)
	assert.LessOrEqual(t, len(points), 6)

	newest := points[len(points)-1].Timestamp
	for _, p := range points {
		assert.LessOrEqual(t, newest.Sub(p.Timestamp), 5*time.Minute)
	}
}

func TestHistoryChronological(t *testing.T) {
	c := testCalculator(100, time.Hour, time.Second)
	for i := 0; i < 10; i++ {
		c.AddData(MetricCPU, float64(i))
	}

	points, err := c.History(MetricCPU)
	require.NoError(t, err)
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Timestamp.After(points[i-1].Timestamp))
	}
}

func TestDetectAnomaliesConstantSeries(t *testing.T) {
	c := testCalculator(100, time.Hour, time.Second)
	for i := 0; i < 10; i++ {
		c.AddData(MetricCPU, 50.0)
	}

	anomalies, err := c.DetectAnomalies(MetricCPU, 1.0)
	require.NoError(t, err)
	assert.Empty(t, anomalies, "threshold equals the constant, nothing strictly exceeds it")
}

func TestDetectAnomaliesSeverity(t *testing.T) {
	c := testCalculator(100, time.Hour, time.Second)
	// Mostly idle with two spikes; the larger one lands past 1.5x the
	// threshold.
	for i := 0; i < 20; i++ {
		c.AddData(MetricCPU, 10.0)
	}
	c.AddData(MetricCPU, 40.0)
	c.AddData(MetricCPU, 95.0)

	anomalies, err := c.DetectAnomalies(MetricCPU, 1.0)
	require.NoError(t, err)
	require.Len(t, anomalies, 2)

	assert.Equal(t, 40.0, anomalies[0].Value)
	assert.Equal(t, SeverityMedium, anomalies[0].Severity)
	assert.Equal(t, 95.0, anomalies[1].Value)
	assert.Equal(t, SeverityHigh, anomalies[1].Severity)
}

func TestPredictTrendTooFewPoints(t *testing.T) {
	c := testCalculator(100, time.Hour, time.Second)
	c.AddData(MetricCPU, 40.0)

	trend, err := c.PredictTrend(MetricCPU, time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 0.0, trend.Slope)
	assert.Equal(t, trend.Current, trend.Predicted)
}

func TestPredictTrendRisingSeries(t *testing.T) {
	// One sample per second rising 1%/s: slope ~1, prediction clamps
	// at 100.
	c := testCalculator(100, time.Hour, time.Second)
	for i := 0; i <= 60; i++ {
		c.AddData(MetricCPU, float64(i))
	}

	trend, err := c.PredictTrend(MetricCPU, time.Minute)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, trend.Slope, 1e-6)
	assert.Equal(t, 100.0, trend.Predicted, "percentage prediction clamps to [0, 100]")
}

func TestPredictTrendClampsAtZero(t *testing.T) {
	c := testCalculator(100, time.Hour, time.Second)
	for i := 0; i <= 30; i++ {
		c.AddData(MetricMemory, float64(30-i))
	}

	trend, err := c.PredictTrend(MetricMemory, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0.0, trend.Predicted)
}

func TestPredictTrendConstantSeries(t *testing.T) {
	c := testCalculator(100, time.Hour, time.Second)
	for i := 0; i < 10; i++ {
		c.AddData(MetricCPU, 42.0)
	}

	trend, err := c.PredictTrend(MetricCPU, time.Minute)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, trend.Slope, 1e-9)
	assert.InDelta(t, 42.0, trend.Predicted, 1e-9)
}

func TestPredictLoadTrendConfidence(t *testing.T) {
	c := testCalculator(1000, time.Hour, time.Second)
	// Perfectly stable cpu and memory, 100+ samples: every confidence
	// component saturates at 1.
	for i := 0; i < 120; i++ {
		c.AddData(MetricCPU, 50.0)
		c.AddData(MetricMemory, 60.0)
	}

	trend := c.PredictLoadTrend(time.Minute)
	assert.InDelta(t, 1.0, trend.Confidence, 1e-9)
	assert.Equal(t, 50.0, trend.CPU.Current)
	assert.Equal(t, 60.0, trend.Memory.Current)
}

func TestPredictLoadTrendEmpty(t *testing.T) {
	c := NewCalculator(100, time.Hour)

	trend := c.PredictLoadTrend(time.Minute)
	assert.Equal(t, 0.0, trend.CPU.Slope)
	assert.Equal(t, 0.0, trend.Memory.Slope)
	assert.InDelta(t, 2.0/3.0, trend.Confidence, 1e-9,
		"empty series read as perfectly stable but contribute no samples")
}

func TestMetricsListing(t *testing.T) {
	c := testCalculator(100, time.Hour, time.Second)
	c.AddData(MetricCPU, 1)
	c.AddData(MetricMemory, 2)
	c.AddData(MetricDisk("/"), 3)

	assert.Equal(t, []string{"cpu", "disk:/", "memory"}, c.Metrics())
}

func TestMovingAverage(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	avg := MovingAverage(values, 3)

	require.Len(t, avg, 5)
	assert.InDelta(t, 2.0, avg[2], 1e-9)
	assert.InDelta(t, 4.0, avg[4], 1e-9)
}

func TestHistoryReturnsCopy(t *testing.T) {
	c := testCalculator(100, time.Hour, time.Second)
	c.AddData(MetricCPU, 10.0)

	points, err := c.History(MetricCPU)
	require.NoError(t, err)
	points[0].Value = 99.0

	again, err := c.History(MetricCPU)
	require.NoError(t, err)
	assert.Equal(t, 10.0, again[0].Value)
}
