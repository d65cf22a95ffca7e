package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sysmond.sh/collector"
	"sysmond.sh/internal/format"
)

func newSnapshotCmd() *cobra.Command {
	var (
		jsonOut   bool
		refresh   bool
		showCores bool
		showProcs int
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Take one snapshot of the host",
		Long:  `Collect a single full snapshot and print it as a readable overview or as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger("warn")

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			source, err := collector.NewGopsutilSource(ctx)
			if err != nil {
				printError("Failed to initialize collector: %v", err)
				return err
			}
			c := collector.NewCachedCollector(source, time.Second, slog.Default())

			if refresh {
				if err := c.ForceRefresh(ctx); err != nil {
					printError("Forced refresh failed: %v", err)
					return err
				}
			}

			snapshot, err := c.CollectSnapshot(ctx)
			if err != nil {
				printError("Snapshot failed: %v", err)
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(snapshot)
			}

			printSnapshot(ctx, c, snapshot, showCores, showProcs)

			if refresh {
				if ts, err := c.LastRefresh(); err == nil {
					fmt.Printf("\nRefreshed: %s\n", ts.Format(time.RFC3339))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output the snapshot as JSON")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "force a source refresh before collecting")
	cmd.Flags().BoolVar(&showCores, "cores", false, "also show per-core usage and frequency")
	cmd.Flags().IntVar(&showProcs, "processes", 0, "also show the top N processes by CPU")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "collection timeout")

	return cmd
}

func printSnapshot(ctx context.Context, c collector.SystemCollector, s *collector.SystemSnapshot, showCores bool, showProcs int) {
	printHeader(fmt.Sprintf("%s (%s %s, kernel %s)",
		s.System.Hostname, s.System.OSName, s.System.OSVersion, s.System.KernelVersion))
	fmt.Printf("Uptime:  %s\n", format.Uptime(s.System.Uptime))

	health := s.HealthStatus()
	fmt.Printf("Load:    %s  Health: %s\n",
		format.Percent(s.LoadScore()), healthColor(health)(health.String()))
	fmt.Println()

	cpuColor := usageColor(s.CPU.GlobalUsage)
	fmt.Printf("CPU      %s  (%d cores, load avg %.2f %.2f %.2f)\n",
		cpuColor(format.Percent(s.CPU.GlobalUsage)),
		s.CPU.CoreCount, s.CPU.LoadAvg1, s.CPU.LoadAvg5, s.CPU.LoadAvg15)

	if showCores {
		for _, core := range s.CPU.Cores {
			// Core frequencies arrive in MHz.
			fmt.Printf("  %-8s %6s  %s\n", core.Name,
				format.Percent(core.Usage), format.Frequency(core.Frequency*1_000_000))
		}
	}

	memColor := usageColor(s.Memory.UsagePercent)
	fmt.Printf("Memory   %s  (%s of %s used, %s available)\n",
		memColor(format.Percent(s.Memory.UsagePercent)),
		format.Bytes(s.Memory.Used), format.Bytes(s.Memory.Total),
		format.Bytes(s.Memory.Available))

	for _, disk := range s.Disks {
		diskColor := usageColor(disk.UsagePercent)
		fmt.Printf("Disk     %s  %s  (%s of %s used)\n",
			diskColor(format.Percent(disk.UsagePercent)), disk.MountPoint,
			format.Bytes(disk.UsedSpace), format.Bytes(disk.TotalSpace))
	}

	for _, network := range s.Networks {
		fmt.Printf("Net      %-8s rx %s  tx %s\n", network.Name,
			format.Bytes(network.BytesReceived), format.Bytes(network.BytesSent))
	}

	if showProcs > 0 {
		procs, err := c.CollectProcessInfo(ctx)
		if err != nil {
			printWarning("Process listing failed: %v", err)
			return
		}
		if showProcs < len(procs) {
			procs = procs[:showProcs]
		}

		fmt.Println()
		printHeader("Top processes")
		for _, p := range procs {
			fmt.Printf("%7d  %-24s %6s  %s\n", p.PID, p.Name,
				format.Percent(p.CPUUsage), format.Bytes(p.MemoryUsage))
		}
	}
}

func healthColor(h collector.HealthStatus) func(a ...interface{}) string {
	switch h {
	case collector.HealthExcellent, collector.HealthGood:
		return green
	case collector.HealthFair:
		return cyan
	case collector.HealthPoor:
		return yellow
	default:
		return red
	}
}
