// Package metrics maintains rolling, time-windowed history for scalar
// host metrics and derives statistics, anomaly flags and short-horizon
// trend forecasts from it.
package metrics

import (
	"math"
	"sort"
	"sync"
	"time"

	"sysmond.sh/internal/serrors"
)

// Well-known metric identifiers. Disk metrics are keyed per mount point
// via MetricDisk.
const (
	MetricCPU    = "cpu"
	MetricMemory = "memory"
)

// MetricDisk returns the metric identifier for a disk mount point.
func MetricDisk(mountPoint string) string {
	return "disk:" + mountPoint
}

// HistoryPoint is one recorded sample.
type HistoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// StatsSummary describes a metric's history at query time. An empty
// history yields the zero summary with SampleCount 0.
type StatsSummary struct {
	Current      float64 `json:"current"`
	Average      float64 `json:"average"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Median       float64 `json:"median"`
	StdDeviation float64 `json:"std_deviation"`
	SampleCount  int     `json:"sample_count"`
}

// AnomalySeverity grades how far a point sits above the threshold
type AnomalySeverity int

const (
	SeverityLow AnomalySeverity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s AnomalySeverity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Anomaly is a history point whose value exceeded the statistical
// threshold in effect when the detection ran.
type Anomaly struct {
	Timestamp time.Time       `json:"timestamp"`
	Value     float64         `json:"value"`
	Threshold float64         `json:"threshold"`
	Severity  AnomalySeverity `json:"severity"`
}

// TrendPrediction extrapolates a metric's near-future value by linear
// regression over its history.
type TrendPrediction struct {
	Current    float64 `json:"current"`
	Predicted  float64 `json:"predicted"`
	Slope      float64 `json:"slope"`
	Confidence float64 `json:"confidence"`
}

// LoadTrend combines the CPU and memory forecasts that drive load
// planning decisions.
type LoadTrend struct {
	CPU        TrendPrediction `json:"cpu"`
	Memory     TrendPrediction `json:"memory"`
	Confidence float64         `json:"confidence"`
}

// Calculator keeps a bounded history per metric identifier. Histories
// are evicted by age and by count; the configured maximum is
// authoritative. Queries return copies, never views into live buffers.
type Calculator struct {
	mu sync.RWMutex

	history         map[string][]HistoryPoint
	maxHistorySize  int
	historyDuration time.Duration

	// now is replaceable so eviction tests can drive a logical clock.
	now func() time.Time
}

// NewCalculator creates a calculator bounded to maxHistorySize points
// and historyDuration of age per metric.
func NewCalculator(maxHistorySize int, historyDuration time.Duration) *Calculator {
	return &Calculator{
		history:         make(map[string][]HistoryPoint),
		maxHistorySize:  maxHistorySize,
		historyDuration: historyDuration,
		now:             time.Now,
	}
}

// AddData appends a sample to the metric's history, then evicts points
// older than the history window and truncates to the size bound, oldest
// first.
func (c *Calculator) AddData(metric string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	points := append(c.history[metric], HistoryPoint{Timestamp: now, Value: value})

	cutoff := now.Add(-c.historyDuration)
	start := 0
	for start < len(points) && points[start].Timestamp.Before(cutoff) {
		start++
	}
	points = points[start:]

	if len(points) > c.maxHistorySize {
		points = points[len(points)-c.maxHistorySize:]
	}

	c.history[metric] = points
}

// Metrics returns the tracked metric identifiers.
func (c *Calculator) Metrics() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.history))
	for name := range c.history {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// History returns a copy of the metric's recorded points.
func (c *Calculator) History(metric string) ([]HistoryPoint, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	points, ok := c.history[metric]
	if !ok {
		return nil, serrors.InvalidMetric(metric)
	}
	out := make([]HistoryPoint, len(points))
	copy(out, points)
	return out, nil
}

// CalculateStats derives the descriptive statistics for a metric.
func (c *Calculator) CalculateStats(metric string) (StatsSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	points, ok := c.history[metric]
	if !ok {
		return StatsSummary{}, serrors.InvalidMetric(metric)
	}
	return summarize(points), nil
}

// summarize computes a StatsSummary over points. Caller holds the lock.
func summarize(points []HistoryPoint) StatsSummary {
	if len(points) == 0 {
		return StatsSummary{}
	}

	values := make([]float64, len(points))
	sum := 0.0
	for i, p := range points {
		values[i] = p.Value
		sum += p.Value
	}

	count := float64(len(values))
	average := sum / count

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	variance := 0.0
	for _, v := range values {
		d := v - average
		variance += d * d
	}
	variance /= count

	return StatsSummary{
		Current:      values[len(values)-1],
		Average:      average,
		Min:          sorted[0],
		Max:          sorted[len(sorted)-1],
		Median:       median,
		StdDeviation: math.Sqrt(variance),
		SampleCount:  len(values),
	}
}

// DetectAnomalies reports every history point whose value exceeds
// average + stddev*thresholdMultiplier. Points more than 1.5x over the
// threshold are graded high, the rest medium.
func (c *Calculator) DetectAnomalies(metric string, thresholdMultiplier float64) ([]Anomaly, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	points, ok := c.history[metric]
	if !ok {
		return nil, serrors.InvalidMetric(metric)
	}

	stats := summarize(points)
	threshold := stats.Average + stats.StdDeviation*thresholdMultiplier

	var anomalies []Anomaly
	for _, p := range points {
		if p.Value <= threshold {
			continue
		}
		severity := SeverityMedium
		if p.Value > threshold*1.5 {
			severity = SeverityHigh
		}
		anomalies = append(anomalies, Anomaly{
			Timestamp: p.Timestamp,
			Value:     p.Value,
			Threshold: threshold,
			Severity:  severity,
		})
	}
	return anomalies, nil
}

// PredictTrend forecasts a metric's value window ahead of now. Fewer
// than two points yields slope 0 and predicted == current. Percentage
// metrics stay clamped to [0, 100].
func (c *Calculator) PredictTrend(metric string, window time.Duration) (TrendPrediction, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	points, ok := c.history[metric]
	if !ok {
		return TrendPrediction{}, serrors.InvalidMetric(metric)
	}
	return c.predictWindowLocked(points, window), nil
}

// PredictLoadTrend forecasts CPU and memory together. Untracked series
// contribute empty histories rather than failing: load planning runs
// from startup, before every metric has data.
func (c *Calculator) PredictLoadTrend(window time.Duration) LoadTrend {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cpu := c.predictWindowLocked(c.history[MetricCPU], window)
	memory := c.predictWindowLocked(c.history[MetricMemory], window)

	confidence := c.confidenceLocked()
	cpu.Confidence = confidence
	memory.Confidence = confidence

	return LoadTrend{CPU: cpu, Memory: memory, Confidence: confidence}
}

func (c *Calculator) predictWindowLocked(points []HistoryPoint, window time.Duration) TrendPrediction {
	stats := summarize(points)
	slope := linearSlope(points)

	predicted := stats.Current + slope*window.Seconds()
	predicted = math.Max(0, math.Min(100, predicted))

	return TrendPrediction{
		Current:    stats.Current,
		Predicted:  predicted,
		Slope:      slope,
		Confidence: c.confidenceLocked(),
	}
}

// linearSlope fits value against elapsed seconds since the first point
// by ordinary least squares. Degenerate inputs yield slope 0.
func linearSlope(points []HistoryPoint) float64 {
	if len(points) < 2 {
		return 0
	}

	base := points[0].Timestamp
	n := float64(len(points))
	var sumX, sumY, sumXY, sumX2 float64
	for _, p := range points {
		x := p.Timestamp.Sub(base).Seconds()
		y := p.Value
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denominator := n*sumX2 - sumX*sumX
	if math.Abs(denominator) < 1e-10 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denominator
}

// confidenceLocked scores prediction confidence in [0, 1] from the
// stability of the CPU and memory series and the sample size.
func (c *Calculator) confidenceLocked() float64 {
	cpuStats := summarize(c.history[MetricCPU])
	memStats := summarize(c.history[MetricMemory])

	cpuStability := 1 - math.Min(cpuStats.StdDeviation/100, 1)
	memStability := 1 - math.Min(memStats.StdDeviation/100, 1)
	sampleAdequacy := math.Min(float64(cpuStats.SampleCount), 100) / 100

	return (cpuStability + memStability + sampleAdequacy) / 3
}

// MovingAverage smooths values with a trailing window. Entries before a
// full window average whatever is available.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}

	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		span := window
		if i+1 < window {
			span = i + 1
		}
		out[i] = sum / float64(span)
	}
	return out
}
