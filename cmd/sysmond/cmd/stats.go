package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"sysmond.sh/collector"
	"sysmond.sh/daemon"
	"sysmond.sh/internal/format"
	"sysmond.sh/metrics"
)

func newStatsCmd() *cobra.Command {
	var (
		count     int
		batchSize int
		threshold float64
		window    time.Duration
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Sample the host and analyze the readings",
		Long: `Collect a batch of snapshots, then print descriptive statistics,
anomaly flags and a short-horizon trend forecast for the sampled CPU,
memory and disk series.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger("warn")

			// Unset flags fall back to the daemon config's values.
			if cfg, err := daemon.Load(); err == nil {
				if !cmd.Flags().Changed("batch-size") {
					batchSize = cfg.GetBatchSize()
				}
				if !cmd.Flags().Changed("threshold") {
					threshold = cfg.GetAnomalyThreshold()
				}
			} else {
				printWarning("Config load failed, using flag defaults: %v", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			source, err := collector.NewGopsutilSource(ctx)
			if err != nil {
				printError("Failed to initialize collector: %v", err)
				return err
			}
			cached := collector.NewCachedCollector(source, 100*time.Millisecond, slog.Default())
			batch := collector.NewBatchCollector(cached, batchSize)

			fmt.Printf("Sampling %d snapshots...\n", count)
			snapshots, err := batch.CollectBatchSnapshots(ctx, count)
			if err != nil {
				printError("Batch collection failed: %v", err)
				return err
			}

			calc := metrics.NewCalculator(count, time.Hour)
			for _, s := range snapshots {
				calc.AddData(metrics.MetricCPU, s.CPU.GlobalUsage)
				calc.AddData(metrics.MetricMemory, s.Memory.UsagePercent)
				for _, disk := range s.Disks {
					calc.AddData(metrics.MetricDisk(disk.MountPoint), disk.UsagePercent)
				}
			}

			for _, metric := range calc.Metrics() {
				printMetricStats(calc, metric, threshold)
			}

			printLoadTrend(calc, window)
			printBenchmark(snapshots)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 10, "number of snapshots to sample")
	cmd.Flags().IntVar(&batchSize, "batch-size", 10, "snapshots per batch before pausing")
	cmd.Flags().Float64Var(&threshold, "threshold", 2.0, "anomaly threshold in standard deviations")
	cmd.Flags().DurationVar(&window, "window", 5*time.Minute, "trend prediction window")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "collection timeout")

	return cmd
}

func printMetricStats(calc *metrics.Calculator, metric string, threshold float64) {
	stats, err := calc.CalculateStats(metric)
	if err != nil {
		printWarning("Stats for %s failed: %v", metric, err)
		return
	}

	printHeader(metric)
	fmt.Printf("  current %s  avg %s  min %s  max %s  median %s  stddev %.2f  (%d samples)\n",
		format.Percent(stats.Current), format.Percent(stats.Average),
		format.Percent(stats.Min), format.Percent(stats.Max),
		format.Percent(stats.Median), stats.StdDeviation, stats.SampleCount)

	anomalies, err := calc.DetectAnomalies(metric, threshold)
	if err != nil {
		printWarning("Anomaly detection for %s failed: %v", metric, err)
		return
	}
	for _, a := range anomalies {
		fmt.Printf("  %s %s at %s (threshold %s, severity %s)\n",
			red("anomaly:"), format.Percent(a.Value),
			a.Timestamp.Format(time.TimeOnly), format.Percent(a.Threshold),
			a.Severity)
	}
}

func printLoadTrend(calc *metrics.Calculator, window time.Duration) {
	trend := calc.PredictLoadTrend(window)

	fmt.Println()
	printHeader(fmt.Sprintf("Trend forecast (%s ahead)", window))
	fmt.Printf("  cpu     %s -> %s  (slope %+.3f/s)\n",
		format.Percent(trend.CPU.Current), format.Percent(trend.CPU.Predicted),
		trend.CPU.Slope)
	fmt.Printf("  memory  %s -> %s  (slope %+.3f/s)\n",
		format.Percent(trend.Memory.Current), format.Percent(trend.Memory.Predicted),
		trend.Memory.Slope)
	fmt.Printf("  confidence %.0f%%\n", trend.Confidence*100)
}

func printBenchmark(snapshots []collector.SystemSnapshot) {
	if len(snapshots) < 2 {
		return
	}

	first, last := snapshots[0], snapshots[len(snapshots)-1]
	bench := metrics.NewBenchmark(first.CPU.GlobalUsage, first.Memory.UsagePercent)
	change := bench.Compare(last.CPU.GlobalUsage, last.Memory.UsagePercent)

	fmt.Println()
	printHeader("Change over sample")
	fmt.Printf("  cpu %+.1f%%  memory %+.1f%%  over %s  overall %s\n",
		change.CPUChangePercent, change.MemoryChangePercent,
		format.Duration(change.Elapsed), change.OverallTrend)
}
