package util

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration as a compact human string:
// "8h", "1h 30m", "45m". Sub-minute durations render as "0m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)

	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// FormatSeconds renders a second count the same way as FormatDuration.
// Activity totals arrive from the event source as float seconds.
func FormatSeconds(seconds float64) string {
	return FormatDuration(time.Duration(seconds * float64(time.Second)))
}

// FormatClockMinute renders a minute-of-day as HH:MM (e.g. 445 -> "07:25").
func FormatClockMinute(minute int) string {
	minute = ClampInt(minute, 0, 24*60-1)
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
