package collector

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// maxReportedProcesses bounds the process list to the heaviest CPU users.
const maxReportedProcesses = 50

// GopsutilSource reads host metrics through gopsutil. CPU usage is
// computed as a delta against the previous sample, so the constructor
// primes the counters; until a second read arrives usage reads as 0.
type GopsutilSource struct {
	// cpuMu serializes CPU sampling: gopsutil keeps the previous
	// counters in package state keyed by percpu flag.
	cpuMu sync.Mutex
}

// NewGopsutilSource creates a source backed by the local OS and primes
// the CPU usage baseline.
func NewGopsutilSource(ctx context.Context) (*GopsutilSource, error) {
	s := &GopsutilSource{}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh re-primes the CPU usage baseline. Called on forced refreshes.
func (s *GopsutilSource) Refresh(ctx context.Context) error {
	s.cpuMu.Lock()
	defer s.cpuMu.Unlock()

	if _, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		return err
	}
	_, err := cpu.PercentWithContext(ctx, 0, true)
	return err
}

// ReadCPU returns global and per-core usage, frequencies and load averages.
func (s *GopsutilSource) ReadCPU(ctx context.Context) (CPUInfo, error) {
	s.cpuMu.Lock()
	defer s.cpuMu.Unlock()

	global, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return CPUInfo{}, err
	}

	perCore, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return CPUInfo{}, err
	}

	info := CPUInfo{CoreCount: len(perCore)}
	if len(global) > 0 {
		info.GlobalUsage = global[0]
	}

	// Frequencies are best effort; some platforms report none.
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		infos = nil
	}

	info.Cores = make([]CPUCoreInfo, len(perCore))
	for i, usage := range perCore {
		core := CPUCoreInfo{Name: coreName(i), Usage: usage}
		if i < len(infos) {
			core.Frequency = uint64(infos[i].Mhz)
		} else if len(infos) == 1 {
			core.Frequency = uint64(infos[0].Mhz)
		}
		info.Cores[i] = core
	}

	if avg, err := load.AvgWithContext(ctx); err == nil {
		info.LoadAvg1 = avg.Load1
		info.LoadAvg5 = avg.Load5
		info.LoadAvg15 = avg.Load15
	}

	return info, nil
}

// ReadMemory returns virtual memory usage.
func (s *GopsutilSource) ReadMemory(ctx context.Context) (MemoryInfo, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryInfo{}, err
	}

	return MemoryInfo{
		Total:        vm.Total,
		Used:         vm.Used,
		Available:    vm.Available,
		Free:         vm.Free,
		UsagePercent: vm.UsedPercent,
	}, nil
}

// ReadDisks returns usage for every physical partition.
func (s *GopsutilSource) ReadDisks(ctx context.Context) ([]DiskInfo, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}

	disks := make([]DiskInfo, 0, len(partitions))
	for _, p := range partitions {
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			// Pseudo filesystems and unreadable mounts are skipped.
			continue
		}

		disks = append(disks, DiskInfo{
			Name:           p.Device,
			MountPoint:     p.Mountpoint,
			FileSystem:     p.Fstype,
			TotalSpace:     usage.Total,
			AvailableSpace: usage.Free,
			UsedSpace:      usage.Used,
			UsagePercent:   usage.UsedPercent,
		})
	}

	return disks, nil
}

// ReadProcesses returns the heaviest CPU consumers, at most
// maxReportedProcesses, sorted by CPU usage descending.
func (s *GopsutilSource) ReadProcesses(ctx context.Context) ([]ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// Process exited between listing and inspection.
			continue
		}

		info := ProcessInfo{PID: p.Pid, Name: name}
		if pct, err := p.CPUPercentWithContext(ctx); err == nil {
			info.CPUUsage = pct
		}
		if memInfo, err := p.MemoryInfoWithContext(ctx); err == nil && memInfo != nil {
			info.MemoryUsage = memInfo.RSS
		}
		if status, err := p.StatusWithContext(ctx); err == nil {
			info.Status = strings.Join(status, ",")
		}
		infos = append(infos, info)
	}

	sortProcessesByCPU(infos)
	if len(infos) > maxReportedProcesses {
		infos = infos[:maxReportedProcesses]
	}
	return infos, nil
}

func coreName(i int) string {
	return "cpu" + strconv.Itoa(i)
}

func sortProcessesByCPU(procs []ProcessInfo) {
	sort.Slice(procs, func(i, j int) bool {
		return procs[i].CPUUsage > procs[j].CPUUsage
	})
}

// ReadSystemInfo returns static host information.
func (s *GopsutilSource) ReadSystemInfo(ctx context.Context) (SystemInfo, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return SystemInfo{}, err
	}

	return SystemInfo{
		OSName:        info.OS,
		OSVersion:     info.PlatformVersion,
		KernelVersion: info.KernelVersion,
		Hostname:      info.Hostname,
		Uptime:        info.Uptime,
		BootTime:      info.BootTime,
	}, nil
}

// ReadNetwork returns per-interface traffic counters.
func (s *GopsutilSource) ReadNetwork(ctx context.Context) ([]NetworkInfo, error) {
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, err
	}

	networks := make([]NetworkInfo, 0, len(counters))
	for _, c := range counters {
		networks = append(networks, NetworkInfo{
			Name:            c.Name,
			BytesReceived:   c.BytesRecv,
			BytesSent:       c.BytesSent,
			PacketsReceived: c.PacketsRecv,
			PacketsSent:     c.PacketsSent,
			ErrorsReceived:  c.Errin,
			ErrorsSent:      c.Errout,
		})
	}

	return networks, nil
}
