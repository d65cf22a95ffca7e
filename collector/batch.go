package collector

import (
	"context"
	"time"
)

// defaultBatchPause is the pacing pause inserted after each full batch.
const defaultBatchPause = 100 * time.Millisecond

// BatchCollector drives repeated full-snapshot collection with pacing so
// a large request does not hammer the source in one burst.
type BatchCollector struct {
	collector SystemCollector
	batchSize int
	pause     time.Duration

	// sleep is replaceable so pacing tests can count pauses instead of
	// waiting them out.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewBatchCollector creates a batch collector. After every batchSize-th
// successful snapshot the collector pauses for the default pacing
// interval before continuing.
func NewBatchCollector(collector SystemCollector, batchSize int) *BatchCollector {
	if batchSize < 1 {
		batchSize = 1
	}
	return &BatchCollector{
		collector: collector,
		batchSize: batchSize,
		pause:     defaultBatchPause,
		sleep:     sleepContext,
	}
}

// SetPause overrides the pacing interval.
func (b *BatchCollector) SetPause(d time.Duration) {
	b.pause = d
}

// CollectBatchSnapshots collects count full snapshots. The first error
// from the underlying collector aborts the batch; there is no
// partial-success suppression.
func (b *BatchCollector) CollectBatchSnapshots(ctx context.Context, count int) ([]SystemSnapshot, error) {
	snapshots := make([]SystemSnapshot, 0, count)

	for i := 0; i < count; i++ {
		snapshot, err := b.collector.CollectSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snapshot)

		if len(snapshots)%b.batchSize == 0 {
			if err := b.sleep(ctx, b.pause); err != nil {
				return nil, err
			}
		}
	}

	return snapshots, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
