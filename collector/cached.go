package collector

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"sysmond.sh/internal/observability"
	"sysmond.sh/internal/serrors"
)

// Guard provides scoped shared/exclusive access to cache state. The
// production guard wraps a sync.RWMutex and never fails; a guard that
// cannot be acquired makes the current call fail with ErrLockFailure,
// without retry and without touching previously cached values.
type Guard interface {
	RLock() error
	RUnlock()
	Lock() error
	Unlock()
}

type mutexGuard struct {
	mu sync.RWMutex
}

func (g *mutexGuard) RLock() error { g.mu.RLock(); return nil }
func (g *mutexGuard) RUnlock()     { g.mu.RUnlock() }
func (g *mutexGuard) Lock() error  { g.mu.Lock(); return nil }
func (g *mutexGuard) Unlock()      { g.mu.Unlock() }

// cacheEntry is one slot value with its write timestamp.
type cacheEntry[T any] struct {
	ts  time.Time
	val T
	ok  bool
}

func (e cacheEntry[T]) fresh(now time.Time, ttl time.Duration) bool {
	return e.ok && now.Sub(e.ts) <= ttl
}

// collectorCache holds one slot per metric kind. Slots age out
// independently; only a forced refresh clears them together.
type collectorCache struct {
	cpu      cacheEntry[CPUInfo]
	memory   cacheEntry[MemoryInfo]
	disks    cacheEntry[[]DiskInfo]
	procs    cacheEntry[[]ProcessInfo]
	system   cacheEntry[SystemInfo]
	networks cacheEntry[[]NetworkInfo]
}

// refreshLocks serializes the recompute step per slot so concurrent
// callers racing on a stale slot trigger a single underlying read.
type refreshLocks struct {
	cpu      sync.Mutex
	memory   sync.Mutex
	disks    sync.Mutex
	procs    sync.Mutex
	system   sync.Mutex
	networks sync.Mutex
}

// CachedCollector wraps a SnapshotSource with a per-kind time-bounded
// cache. Callers always receive copies, never references into the
// cache, so lock scopes stay small.
type CachedCollector struct {
	source        SnapshotSource
	cacheDuration time.Duration

	guard   Guard
	cache   collectorCache
	refresh refreshLocks

	lastRefresh time.Time

	subMu       sync.Mutex
	subscribers []chan struct{}

	// now is replaceable so freshness tests can drive a logical clock.
	now func() time.Time

	logger *slog.Logger
}

// NewCachedCollector creates a collector serving reads from source with
// the given cache window.
func NewCachedCollector(source SnapshotSource, cacheDuration time.Duration, logger *slog.Logger) *CachedCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedCollector{
		source:        source,
		cacheDuration: cacheDuration,
		guard:         &mutexGuard{},
		now:           time.Now,
		lastRefresh:   time.Now(),
		logger:        logger,
	}
}

// getCached serves one slot: fresh hit under shared access, otherwise a
// serialized recompute. The source read happens with no cache lock held.
func getCached[T any](
	ctx context.Context,
	c *CachedCollector,
	kind string,
	refreshMu *sync.Mutex,
	read func(*collectorCache) cacheEntry[T],
	write func(*collectorCache, cacheEntry[T]),
	clone func(T) T,
	fetch func(context.Context) (T, error),
) (T, error) {
	var zero T

	if err := c.guard.RLock(); err != nil {
		return zero, serrors.Wrapf(err, "checking %s slot", kind)
	}
	entry := read(&c.cache)
	c.guard.RUnlock()

	if entry.fresh(c.now(), c.cacheDuration) {
		observability.CacheHitsTotal.WithLabelValues(kind).Inc()
		return clone(entry.val), nil
	}
	observability.CacheMissesTotal.WithLabelValues(kind).Inc()

	refreshMu.Lock()
	defer refreshMu.Unlock()

	// A racer may have refreshed the slot while we waited.
	if err := c.guard.RLock(); err != nil {
		return zero, serrors.Wrapf(err, "rechecking %s slot", kind)
	}
	entry = read(&c.cache)
	c.guard.RUnlock()

	if entry.fresh(c.now(), c.cacheDuration) {
		return clone(entry.val), nil
	}

	observability.SourceReadsTotal.WithLabelValues(kind).Inc()
	val, err := fetch(ctx)
	if err != nil {
		observability.SourceErrorsTotal.WithLabelValues(kind).Inc()
		return zero, serrors.SourceUnavailable(kind, err)
	}

	if err := c.guard.Lock(); err != nil {
		return zero, serrors.Wrapf(err, "storing %s slot", kind)
	}
	write(&c.cache, cacheEntry[T]{ts: c.now(), val: val, ok: true})
	c.guard.Unlock()

	return clone(val), nil
}

// CollectCPUInfo returns CPU usage, cached for the cache window.
func (c *CachedCollector) CollectCPUInfo(ctx context.Context) (CPUInfo, error) {
	return getCached(ctx, c, KindCPU, &c.refresh.cpu,
		func(cc *collectorCache) cacheEntry[CPUInfo] { return cc.cpu },
		func(cc *collectorCache, e cacheEntry[CPUInfo]) { cc.cpu = e },
		cloneCPUInfo,
		c.source.ReadCPU,
	)
}

// CollectMemoryInfo returns memory usage, cached for the cache window.
func (c *CachedCollector) CollectMemoryInfo(ctx context.Context) (MemoryInfo, error) {
	return getCached(ctx, c, KindMemory, &c.refresh.memory,
		func(cc *collectorCache) cacheEntry[MemoryInfo] { return cc.memory },
		func(cc *collectorCache, e cacheEntry[MemoryInfo]) { cc.memory = e },
		func(m MemoryInfo) MemoryInfo { return m },
		c.source.ReadMemory,
	)
}

// CollectDiskInfo returns per-mount disk usage, cached for the cache window.
func (c *CachedCollector) CollectDiskInfo(ctx context.Context) ([]DiskInfo, error) {
	return getCached(ctx, c, KindDisk, &c.refresh.disks,
		func(cc *collectorCache) cacheEntry[[]DiskInfo] { return cc.disks },
		func(cc *collectorCache, e cacheEntry[[]DiskInfo]) { cc.disks = e },
		cloneDisks,
		c.source.ReadDisks,
	)
}

// CollectProcessInfo returns the top CPU-consuming processes, cached for
// the cache window.
func (c *CachedCollector) CollectProcessInfo(ctx context.Context) ([]ProcessInfo, error) {
	return getCached(ctx, c, KindProcess, &c.refresh.procs,
		func(cc *collectorCache) cacheEntry[[]ProcessInfo] { return cc.procs },
		func(cc *collectorCache, e cacheEntry[[]ProcessInfo]) { cc.procs = e },
		cloneProcesses,
		c.source.ReadProcesses,
	)
}

// CollectSystemInfo returns static host information, cached for the
// cache window.
func (c *CachedCollector) CollectSystemInfo(ctx context.Context) (SystemInfo, error) {
	return getCached(ctx, c, KindSystem, &c.refresh.system,
		func(cc *collectorCache) cacheEntry[SystemInfo] { return cc.system },
		func(cc *collectorCache, e cacheEntry[SystemInfo]) { cc.system = e },
		func(s SystemInfo) SystemInfo { return s },
		c.source.ReadSystemInfo,
	)
}

// CollectNetworkInfo returns per-interface counters, cached for the
// cache window.
func (c *CachedCollector) CollectNetworkInfo(ctx context.Context) ([]NetworkInfo, error) {
	return getCached(ctx, c, KindNetwork, &c.refresh.networks,
		func(cc *collectorCache) cacheEntry[[]NetworkInfo] { return cc.networks },
		func(cc *collectorCache, e cacheEntry[[]NetworkInfo]) { cc.networks = e },
		cloneNetworks,
		c.source.ReadNetwork,
	)
}

// ForceRefresh re-primes the source, clears every cache slot atomically,
// resets the last-refresh timestamp and signals subscribers. The next
// read of any kind goes back to the source.
func (c *CachedCollector) ForceRefresh(ctx context.Context) error {
	if r, ok := c.source.(Refresher); ok {
		if err := r.Refresh(ctx); err != nil {
			return serrors.SourceUnavailable("refresh", err)
		}
	}

	if err := c.guard.Lock(); err != nil {
		return serrors.Wrap(err, "clearing cache")
	}
	c.cache = collectorCache{}
	c.lastRefresh = c.now()
	c.guard.Unlock()

	observability.ForceRefreshesTotal.Inc()
	c.notifySubscribers()
	return nil
}

// LastRefresh returns the time of the last forced refresh.
func (c *CachedCollector) LastRefresh() (time.Time, error) {
	if err := c.guard.RLock(); err != nil {
		return time.Time{}, serrors.Wrap(err, "reading last refresh")
	}
	defer c.guard.RUnlock()
	return c.lastRefresh, nil
}

// Subscribe returns a channel that receives a signal after every forced
// refresh. The signal is best effort: a subscriber that has not drained
// its channel does not block the refresh.
func (c *CachedCollector) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	c.subMu.Lock()
	c.subscribers = append(c.subscribers, ch)
	c.subMu.Unlock()
	return ch
}

func (c *CachedCollector) notifySubscribers() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// GetSystemStats composes the cached CPU, memory, disk and process reads
// into a condensed stats struct.
func (c *CachedCollector) GetSystemStats(ctx context.Context) (SystemStats, error) {
	cpuInfo, err := c.CollectCPUInfo(ctx)
	if err != nil {
		return SystemStats{}, err
	}
	memInfo, err := c.CollectMemoryInfo(ctx)
	if err != nil {
		return SystemStats{}, err
	}
	disks, err := c.CollectDiskInfo(ctx)
	if err != nil {
		return SystemStats{}, err
	}
	procs, err := c.CollectProcessInfo(ctx)
	if err != nil {
		return SystemStats{}, err
	}

	stats := SystemStats{
		CPUUsageAvg:        cpuInfo.GlobalUsage,
		MemoryUsagePercent: memInfo.UsagePercent,
		ActiveProcesses:    len(procs),
	}
	for _, d := range disks {
		if d.UsagePercent > stats.DiskUsageMax {
			stats.DiskUsageMax = d.UsagePercent
		}
	}
	return stats, nil
}

// CollectSnapshot composes a full snapshot. CPU, memory, disk and system
// info are mandatory; a network failure leaves Networks nil rather than
// failing the snapshot.
func (c *CachedCollector) CollectSnapshot(ctx context.Context) (*SystemSnapshot, error) {
	timer := time.Now()
	defer func() {
		observability.SnapshotDuration.Observe(time.Since(timer).Seconds())
	}()

	cpuInfo, err := c.CollectCPUInfo(ctx)
	if err != nil {
		return nil, err
	}
	memInfo, err := c.CollectMemoryInfo(ctx)
	if err != nil {
		return nil, err
	}
	disks, err := c.CollectDiskInfo(ctx)
	if err != nil {
		return nil, err
	}
	sysInfo, err := c.CollectSystemInfo(ctx)
	if err != nil {
		return nil, err
	}

	networks, err := c.CollectNetworkInfo(ctx)
	if err != nil {
		c.logger.With("error", err).Debug("network read failed, omitting from snapshot")
		networks = nil
	}

	return &SystemSnapshot{
		Timestamp: c.now(),
		CPU:       cpuInfo,
		Memory:    memInfo,
		Disks:     disks,
		System:    sysInfo,
		Networks:  networks,
	}, nil
}
