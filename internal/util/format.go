package util

import (
	"fmt"
	"time"
)

// FormatCount formats a metric count with K/M suffix for readability.
// Examples: 500 -> "500", 1500 -> "1.5K", 1500000 -> "1.5M"
func FormatCount(n float64) string {
	if n < 1000 {
		return fmt.Sprintf("%.0f", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", n/1000)
	}
	return fmt.Sprintf("%.1fM", n/1000000)
}

// FormatCost formats a USD amount. Small amounts keep four decimals so
// sub-cent costs stay visible.
// Examples: 0.0042 -> "$0.0042", 12.5 -> "$12.50"
func FormatCost(usd float64) string {
	if usd != 0 && usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

// FormatDurationSeconds formats a duration given in seconds.
// Examples: 42 -> "42s", 150 -> "2m30s", 3720 -> "1h2m0s"
func FormatDurationSeconds(secs float64) string {
	d := time.Duration(secs * float64(time.Second))
	return d.Round(time.Second).String()
}
