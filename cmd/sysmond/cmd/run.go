package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sysmond.sh/daemon"
	"sysmond.sh/internal/version"
)

func newRunCmd() *cobra.Command {
	var (
		interval    time.Duration
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the collection daemon",
		Long: `Run the collection loop in the foreground. Each interval a
snapshot is taken, recorded into the rolling history and exported as
Prometheus gauges when a metrics address is configured.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := daemon.Load()
			if err != nil {
				printError("Failed to load config: %v", err)
				return err
			}
			if cmd.Flags().Changed("interval") {
				cfg.SetCollectionInterval(interval)
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.SetMetricsAddr(metricsAddr)
			}

			setupLogger(cfg.GetLogLevel())
			slog.With("version", version.Version).Info("Starting sysmond")

			d, err := daemon.New(cfg, slog.Default())
			if err != nil {
				slog.With("error", err).Error("Failed to initialize daemon")
				return err
			}

			errChan := make(chan error, 1)
			go func() {
				if err := d.Start(); err != nil {
					errChan <- err
				}
			}()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errChan:
				slog.With("error", err).Error("Daemon failed")
				return err
			case s := <-sig:
				slog.Info("Received signal", "signal", s)
			}

			slog.Info("Shutting down...")
			d.Stop()
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "collection interval")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (empty disables)")

	return cmd
}
