package domain

import (
	"fmt"
	"time"
)

// WorkedHours renders a worked interval as decimal hours with two
// digits, e.g. 90 minutes -> "1.50".
func WorkedHours(d time.Duration) string {
	return fmt.Sprintf("%.2f", d.Hours())
}

// FullTime renders a worked interval as "H h M min", e.g. 90 minutes ->
// "1 h 30 min".
func FullTime(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	return fmt.Sprintf("%d h %d min", hours, minutes)
}

// ClockFormat renders a seconds counter as zero-padded HH:MM:SS.
// Shifts are assumed shorter than a day; no rollover handling.
func ClockFormat(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
