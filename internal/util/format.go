package util

import (
	"fmt"
	"strconv"
)

// FormatNumber formats an int64 with K/M suffix for readability.
// Examples: 500 -> "500", 1500 -> "1.5K", 1500000 -> "1.5M"
func FormatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// FormatFloat prints f with at most two decimals and no trailing zeros.
// Examples: 3 -> "3", 19.990 -> "19.99", 0.666 -> "0.67"
func FormatFloat(f float64) string {
	return strconv.FormatFloat(roundTo(f, 2), 'f', -1, 64)
}

// FormatPercent formats part/total as a percentage with one decimal.
// A zero total yields "0.0%".
func FormatPercent(part, total int64) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(total))
}

func roundTo(f float64, decimals int) float64 {
	s := strconv.FormatFloat(f, 'f', decimals, 64)
	r, _ := strconv.ParseFloat(s, 64)
	return r
}
