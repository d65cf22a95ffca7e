// Package collector provides cached access to host metrics. A
// SnapshotSource performs the actual (possibly expensive) OS reads;
// CachedCollector serves each metric kind from a time-bounded cache and
// guarantees at most one underlying read per kind per staleness window.
package collector

import "context"

// Metric kinds, used as cache slot identifiers and metric labels.
const (
	KindCPU     = "cpu"
	KindMemory  = "memory"
	KindDisk    = "disk"
	KindProcess = "process"
	KindSystem  = "system"
	KindNetwork = "network"
)

// SnapshotSource is the capability set consumed by CachedCollector. Each
// read blocks on syscalls and either returns a typed value or fails.
// Implementations must be safe for concurrent use.
type SnapshotSource interface {
	ReadCPU(ctx context.Context) (CPUInfo, error)
	ReadMemory(ctx context.Context) (MemoryInfo, error)
	ReadDisks(ctx context.Context) ([]DiskInfo, error)
	ReadProcesses(ctx context.Context) ([]ProcessInfo, error)
	ReadSystemInfo(ctx context.Context) (SystemInfo, error)
	ReadNetwork(ctx context.Context) ([]NetworkInfo, error)
}

// Refresher is an optional source capability invoked by a forced refresh,
// re-sampling whatever internal baseline the source keeps (for example
// the CPU usage delta baseline).
type Refresher interface {
	Refresh(ctx context.Context) error
}

// SystemCollector is the collection strategy consumed by BatchCollector
// and the daemon. CachedCollector is the production implementation.
type SystemCollector interface {
	CollectCPUInfo(ctx context.Context) (CPUInfo, error)
	CollectMemoryInfo(ctx context.Context) (MemoryInfo, error)
	CollectDiskInfo(ctx context.Context) ([]DiskInfo, error)
	CollectProcessInfo(ctx context.Context) ([]ProcessInfo, error)
	CollectSystemInfo(ctx context.Context) (SystemInfo, error)
	CollectNetworkInfo(ctx context.Context) ([]NetworkInfo, error)
	CollectSnapshot(ctx context.Context) (*SystemSnapshot, error)
}
