package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func snapshotWith(cpu, mem, disk float64) *SystemSnapshot {
	return &SystemSnapshot{
		CPU:    CPUInfo{GlobalUsage: cpu},
		Memory: MemoryInfo{UsagePercent: mem},
		Disks:  []DiskInfo{{UsagePercent: disk}},
	}
}

func TestLoadScore(t *testing.T) {
	s := snapshotWith(50, 50, 50)
	assert.InDelta(t, 50.0, s.LoadScore(), 1e-9)

	// Fullest disk wins the disk component.
	s = snapshotWith(0, 0, 0)
	s.Disks = []DiskInfo{{UsagePercent: 30}, {UsagePercent: 90}}
	assert.InDelta(t, 18.0, s.LoadScore(), 1e-9)
}

func TestHealthStatusBuckets(t *testing.T) {
	assert.Equal(t, HealthExcellent, snapshotWith(20, 25, 10).HealthStatus())
	assert.Equal(t, HealthGood, snapshotWith(50, 50, 10).HealthStatus())
	assert.Equal(t, HealthFair, snapshotWith(80, 70, 30).HealthStatus())
	assert.Equal(t, HealthPoor, snapshotWith(95, 85, 60).HealthStatus())
	assert.Equal(t, HealthCritical, snapshotWith(100, 100, 95).HealthStatus())
}

func TestHealthStatusString(t *testing.T) {
	assert.Equal(t, "excellent", HealthExcellent.String())
	assert.Equal(t, "critical", HealthCritical.String())
	assert.Equal(t, "unknown", HealthStatus(42).String())
}
