package collector

import (
	"context"
	"sync/atomic"
)

// MockSource is a SnapshotSource for tests and embedders that need a
// deterministic source. Every read returns the corresponding canned
// value, or the injected error for that kind; call counts are tracked
// per kind so caching behavior can be asserted.
type MockSource struct {
	CPU      CPUInfo
	Memory   MemoryInfo
	Disks    []DiskInfo
	Procs    []ProcessInfo
	System   SystemInfo
	Networks []NetworkInfo

	// Errs maps a metric kind to an error returned instead of the
	// canned value. A "refresh" key fails the Refresh hook.
	Errs map[string]error

	cpuReads     atomic.Int64
	memoryReads  atomic.Int64
	diskReads    atomic.Int64
	procReads    atomic.Int64
	systemReads  atomic.Int64
	networkReads atomic.Int64
	refreshes    atomic.Int64
}

// NewMockSource returns a mock with plausible fixture values.
func NewMockSource() *MockSource {
	return &MockSource{
		Errs: make(map[string]error),
		CPU: CPUInfo{
			GlobalUsage: 42.5,
			Cores: []CPUCoreInfo{
				{Name: "cpu0", Usage: 40.0, Frequency: 2400},
				{Name: "cpu1", Usage: 45.0, Frequency: 2400},
			},
			CoreCount: 2,
			LoadAvg1:  0.8,
			LoadAvg5:  0.6,
			LoadAvg15: 0.5,
		},
		Memory: MemoryInfo{
			Total:        8 << 30,
			Used:         4 << 30,
			Available:    4 << 30,
			Free:         3 << 30,
			UsagePercent: 50.0,
		},
		Disks: []DiskInfo{
			{Name: "/dev/sda1", MountPoint: "/", FileSystem: "ext4", TotalSpace: 100 << 30, AvailableSpace: 40 << 30, UsedSpace: 60 << 30, UsagePercent: 60.0},
			{Name: "/dev/sdb1", MountPoint: "/data", FileSystem: "xfs", TotalSpace: 500 << 30, AvailableSpace: 400 << 30, UsedSpace: 100 << 30, UsagePercent: 20.0},
		},
		Procs: []ProcessInfo{
			{PID: 1, Name: "init", CPUUsage: 0.1, MemoryUsage: 8 << 20, Status: "sleep"},
			{PID: 1234, Name: "sysmond", CPUUsage: 2.5, MemoryUsage: 32 << 20, Status: "running"},
		},
		System: SystemInfo{
			OSName:        "linux",
			OSVersion:     "12",
			KernelVersion: "6.1.0",
			Hostname:      "testhost",
			Uptime:        86400,
			BootTime:      1700000000,
		},
		Networks: []NetworkInfo{
			{Name: "eth0", BytesReceived: 1 << 30, BytesSent: 512 << 20, PacketsReceived: 100000, PacketsSent: 80000},
		},
	}
}

func (m *MockSource) err(kind string) error {
	if m.Errs == nil {
		return nil
	}
	return m.Errs[kind]
}

func (m *MockSource) ReadCPU(ctx context.Context) (CPUInfo, error) {
	m.cpuReads.Add(1)
	if err := m.err(KindCPU); err != nil {
		return CPUInfo{}, err
	}
	return cloneCPUInfo(m.CPU), nil
}

func (m *MockSource) ReadMemory(ctx context.Context) (MemoryInfo, error) {
	m.memoryReads.Add(1)
	if err := m.err(KindMemory); err != nil {
		return MemoryInfo{}, err
	}
	return m.Memory, nil
}

func (m *MockSource) ReadDisks(ctx context.Context) ([]DiskInfo, error) {
	m.diskReads.Add(1)
	if err := m.err(KindDisk); err != nil {
		return nil, err
	}
	return cloneDisks(m.Disks), nil
}

func (m *MockSource) ReadProcesses(ctx context.Context) ([]ProcessInfo, error) {
	m.procReads.Add(1)
	if err := m.err(KindProcess); err != nil {
		return nil, err
	}
	return cloneProcesses(m.Procs), nil
}

func (m *MockSource) ReadSystemInfo(ctx context.Context) (SystemInfo, error) {
	m.systemReads.Add(1)
	if err := m.err(KindSystem); err != nil {
		return SystemInfo{}, err
	}
	return m.System, nil
}

func (m *MockSource) ReadNetwork(ctx context.Context) ([]NetworkInfo, error) {
	m.networkReads.Add(1)
	if err := m.err(KindNetwork); err != nil {
		return nil, err
	}
	return cloneNetworks(m.Networks), nil
}

// Refresh implements the Refresher hook.
func (m *MockSource) Refresh(ctx context.Context) error {
	m.refreshes.Add(1)
	return m.err("refresh")
}

// Read counters, per kind.

func (m *MockSource) CPUReads() int64     { return m.cpuReads.Load() }
func (m *MockSource) MemoryReads() int64  { return m.memoryReads.Load() }
func (m *MockSource) DiskReads() int64    { return m.diskReads.Load() }
func (m *MockSource) ProcessReads() int64 { return m.procReads.Load() }
func (m *MockSource) SystemReads() int64  { return m.systemReads.Load() }
func (m *MockSource) NetworkReads() int64 { return m.networkReads.Load() }
func (m *MockSource) Refreshes() int64    { return m.refreshes.Load() }
