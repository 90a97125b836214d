package utils

import (
	"fmt"
	"time"
)

// FormatRelativeTime renders an absolute timestamp as a human label relative
// to now ("Just now", "2 minutes ago", "1 month ago"). Thresholds are fixed:
// 60s, 1h, 24h, 7d, 30d, 365d.
func FormatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < time.Minute {
		return "Just now"
	}

	switch {
	case diff < time.Hour:
		return pluralize(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return pluralize(int(diff.Hours()), "hour")
	}

	days := int(diff.Hours() / 24)
	switch {
	case days < 7:
		return pluralize(days, "day")
	case days < 30:
		return pluralize(days/7, "week")
	case days < 365:
		return pluralize(days/30, "month")
	default:
		return pluralize(days/365, "year")
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
