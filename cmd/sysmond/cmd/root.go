package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sysmond.sh/internal/config"
)

var (
	verbose bool
	noColor bool

	// Color functions
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sysmond",
	Short: "sysmond - host metrics collector and analyzer",
	Long: `sysmond collects CPU, memory, disk, process and network metrics
from the local host, keeps a rolling history of them, and derives
statistics, anomaly flags and short-horizon trend forecasts.

Run it as a daemon with 'sysmond run', or take one-shot readings with
'sysmond snapshot' and 'sysmond stats'.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))

	// Add commands
	rootCmd.AddCommand(
		newRunCmd(),
		newSnapshotCmd(),
		newStatsCmd(),
		newVersionCmd(),
	)
}

// initConfig wires environment variables into viper. Runs after flag
// parsing, so the no-color flag is readable here.
func initConfig() {
	viper.SetEnvPrefix("SYSMOND")
	viper.AutomaticEnv()

	if noColor || config.GetBoolFromEnv("SYSMOND_NO_COLOR", false) {
		color.NoColor = true
	}
}

// setupLogger installs a slog default logger at the given level.
func setupLogger(level string) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	if verbose {
		l = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(handler))
}

// Helper functions for consistent output

func printError(format string, a ...any) {
	fmt.Printf("%s %s\n", red("[ERROR]"), fmt.Sprintf(format, a...))
}

func printWarning(format string, a ...any) {
	fmt.Printf("%s %s\n", yellow("[WARN]"), fmt.Sprintf(format, a...))
}

func printHeader(text string) {
	fmt.Println(bold(text))
}

// usageColor picks the color function for a usage percentage.
func usageColor(percent float64) func(a ...interface{}) string {
	switch {
	case percent < 60:
		return green
	case percent < 80:
		return yellow
	default:
		return red
	}
}
