// Package format renders byte counts, durations and percentages for
// human-facing output.
package format

import (
	"fmt"
	"time"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// Bytes renders a byte count with 1024-based units, one decimal place
// above bytes.
func Bytes(n uint64) string {
	if n == 0 {
		return "0 B"
	}

	size := float64(n)
	unit := 0
	for size >= 1024 && unit < len(byteUnits)-1 {
		size /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d %s", n, byteUnits[unit])
	}
	return fmt.Sprintf("%.1f %s", size, byteUnits[unit])
}

// Percent renders a percentage with one decimal place.
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Frequency renders a frequency in Hz with the largest fitting unit.
func Frequency(hz uint64) string {
	switch {
	case hz >= 1_000_000_000:
		return fmt.Sprintf("%.1f GHz", float64(hz)/1_000_000_000)
	case hz >= 1_000_000:
		return fmt.Sprintf("%.1f MHz", float64(hz)/1_000_000)
	case hz >= 1_000:
		return fmt.Sprintf("%.1f KHz", float64(hz)/1_000)
	default:
		return fmt.Sprintf("%d Hz", hz)
	}
}

// Uptime renders a second count as the largest two relevant units.
func Uptime(seconds uint64) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// Duration renders a duration with second precision, dropping
// sub-second noise from elapsed times.
func Duration(d time.Duration) string {
	return d.Truncate(time.Second).String()
}
