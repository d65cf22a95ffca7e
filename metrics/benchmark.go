package metrics

import "time"

// TrendDirection classifies overall resource movement against a baseline
type TrendDirection int

const (
	TrendStable TrendDirection = iota
	TrendIncreasing
	TrendDecreasing
)

func (d TrendDirection) String() string {
	switch d {
	case TrendIncreasing:
		return "increasing"
	case TrendDecreasing:
		return "decreasing"
	default:
		return "stable"
	}
}

// PerformanceChange reports resource movement relative to a baseline.
type PerformanceChange struct {
	CPUChangePercent    float64        `json:"cpu_change_percent"`
	MemoryChangePercent float64        `json:"memory_change_percent"`
	Elapsed             time.Duration  `json:"elapsed"`
	OverallTrend        TrendDirection `json:"overall_trend"`
}

// PerformanceBenchmark captures a CPU/memory baseline and measures how
// far later readings have drifted from it.
type PerformanceBenchmark struct {
	baselineCPU    float64
	baselineMemory float64
	baselineTime   time.Time

	now func() time.Time
}

// NewBenchmark records the given readings as the baseline.
func NewBenchmark(cpuUsage, memoryUsage float64) *PerformanceBenchmark {
	return &PerformanceBenchmark{
		baselineCPU:    cpuUsage,
		baselineMemory: memoryUsage,
		baselineTime:   time.Now(),
		now:            time.Now,
	}
}

// Compare reports the change of the current readings against the
// baseline. A change over 10% in either direction moves the trend off
// stable.
func (b *PerformanceBenchmark) Compare(currentCPU, currentMemory float64) PerformanceChange {
	change := PerformanceChange{
		CPUChangePercent:    relativeChange(b.baselineCPU, currentCPU),
		MemoryChangePercent: relativeChange(b.baselineMemory, currentMemory),
		Elapsed:             b.now().Sub(b.baselineTime),
	}

	switch {
	case change.CPUChangePercent > 10 || change.MemoryChangePercent > 10:
		change.OverallTrend = TrendIncreasing
	case change.CPUChangePercent < -10 || change.MemoryChangePercent < -10:
		change.OverallTrend = TrendDecreasing
	default:
		change.OverallTrend = TrendStable
	}
	return change
}

// relativeChange guards the zero baseline rather than dividing through it.
func relativeChange(baseline, current float64) float64 {
	if baseline == 0 {
		return 0
	}
	return (current - baseline) / baseline * 100
}
