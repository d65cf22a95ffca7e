package collector

import (
	"time"
)

// CPUInfo contains global and per-core CPU usage
type CPUInfo struct {
	GlobalUsage float64       `json:"global_usage"`
	Cores       []CPUCoreInfo `json:"cores"`
	CoreCount   int           `json:"core_count"`
	LoadAvg1    float64       `json:"load_avg_1"`
	LoadAvg5    float64       `json:"load_avg_5"`
	LoadAvg15   float64       `json:"load_avg_15"`
}

// CPUCoreInfo contains usage for a single logical core
type CPUCoreInfo struct {
	Name      string  `json:"name"`
	Usage     float64 `json:"usage"`
	Frequency uint64  `json:"frequency_mhz"`
}

// MemoryInfo contains memory usage in bytes plus a usage percentage
type MemoryInfo struct {
	Total        uint64  `json:"total"`
	Used         uint64  `json:"used"`
	Available    uint64  `json:"available"`
	Free         uint64  `json:"free"`
	UsagePercent float64 `json:"usage_percent"`
}

// DiskInfo contains usage for a mounted filesystem
type DiskInfo struct {
	Name           string  `json:"name"`
	MountPoint     string  `json:"mount_point"`
	FileSystem     string  `json:"file_system"`
	TotalSpace     uint64  `json:"total_space"`
	AvailableSpace uint64  `json:"available_space"`
	UsedSpace      uint64  `json:"used_space"`
	UsagePercent   float64 `json:"usage_percent"`
}

// ProcessInfo contains per-process resource usage
type ProcessInfo struct {
	PID         int32   `json:"pid"`
	Name        string  `json:"name"`
	CPUUsage    float64 `json:"cpu_usage"`
	MemoryUsage uint64  `json:"memory_usage"`
	Status      string  `json:"status"`
}

// SystemInfo contains static host information
type SystemInfo struct {
	OSName        string `json:"os_name"`
	OSVersion     string `json:"os_version"`
	KernelVersion string `json:"kernel_version"`
	Hostname      string `json:"hostname"`
	Uptime        uint64 `json:"uptime"`
	BootTime      uint64 `json:"boot_time"`
}

// NetworkInfo contains counters for a network interface
type NetworkInfo struct {
	Name            string `json:"name"`
	BytesReceived   uint64 `json:"bytes_received"`
	BytesSent       uint64 `json:"bytes_sent"`
	PacketsReceived uint64 `json:"packets_received"`
	PacketsSent     uint64 `json:"packets_sent"`
	ErrorsReceived  uint64 `json:"errors_received"`
	ErrorsSent      uint64 `json:"errors_sent"`
}

// SystemStats is a condensed view composed from the cached metric kinds
type SystemStats struct {
	CPUUsageAvg        float64 `json:"cpu_usage_avg"`
	MemoryUsagePercent float64 `json:"memory_usage_percent"`
	DiskUsageMax       float64 `json:"disk_usage_max"`
	ActiveProcesses    int     `json:"active_processes"`
}

// SystemSnapshot is a full point-in-time view of the host. Networks is
// nil when the network read failed; every other field is mandatory.
type SystemSnapshot struct {
	Timestamp time.Time     `json:"timestamp"`
	CPU       CPUInfo       `json:"cpu"`
	Memory    MemoryInfo    `json:"memory"`
	Disks     []DiskInfo    `json:"disks"`
	System    SystemInfo    `json:"system"`
	Networks  []NetworkInfo `json:"networks,omitempty"`
}

// LoadScore condenses the snapshot into a 0-100 load figure weighting
// CPU and memory at 40% each and the fullest disk at 20%.
func (s *SystemSnapshot) LoadScore() float64 {
	diskMax := 0.0
	for _, d := range s.Disks {
		if d.UsagePercent > diskMax {
			diskMax = d.UsagePercent
		}
	}
	return s.CPU.GlobalUsage*0.4 + s.Memory.UsagePercent*0.4 + diskMax*0.2
}

// HealthStatus buckets the load score into a coarse health rating.
func (s *SystemSnapshot) HealthStatus() HealthStatus {
	score := s.LoadScore()
	switch {
	case score < 30:
		return HealthExcellent
	case score < 50:
		return HealthGood
	case score < 70:
		return HealthFair
	case score < 85:
		return HealthPoor
	default:
		return HealthCritical
	}
}

// HealthStatus is a coarse system health rating derived from the load score
type HealthStatus int

const (
	HealthExcellent HealthStatus = iota
	HealthGood
	HealthFair
	HealthPoor
	HealthCritical
)

func (h HealthStatus) String() string {
	switch h {
	case HealthExcellent:
		return "excellent"
	case HealthGood:
		return "good"
	case HealthFair:
		return "fair"
	case HealthPoor:
		return "poor"
	case HealthCritical:
		return "critical"
	default:
		return "unknown"
	}
}

func cloneCPUInfo(c CPUInfo) CPUInfo {
	out := c
	out.Cores = make([]CPUCoreInfo, len(c.Cores))
	copy(out.Cores, c.Cores)
	return out
}

func cloneDisks(d []DiskInfo) []DiskInfo {
	out := make([]DiskInfo, len(d))
	copy(out, d)
	return out
}

func cloneProcesses(p []ProcessInfo) []ProcessInfo {
	out := make([]ProcessInfo, len(p))
	copy(out, p)
	return out
}

func cloneNetworks(n []NetworkInfo) []NetworkInfo {
	out := make([]NetworkInfo, len(n))
	copy(out, n)
	return out
}
