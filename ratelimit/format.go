package ratelimit

import (
	"fmt"
	"time"
)

// FormatTimeRemaining renders a wait duration for user-facing messages,
// e.g. "45 seconds", "2 minutes" or "1 hour 5 minutes". Zero and
// negative durations render as "0 seconds".
func FormatTimeRemaining(d time.Duration) string {
	seconds := int(d.Round(time.Second).Seconds())
	if seconds <= 0 {
		return "0 seconds"
	}

	if seconds < 60 {
		return plural(seconds, "second")
	}

	minutes := (seconds + 59) / 60 // round up, a partial minute still has to be waited out
	if minutes < 60 {
		return plural(minutes, "minute")
	}

	hours := minutes / 60
	minutes = minutes % 60
	if minutes == 0 {
		return plural(hours, "hour")
	}
	return plural(hours, "hour") + " " + plural(minutes, "minute")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
