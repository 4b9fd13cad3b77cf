package catalog

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatRuntime renders minutes as "2h 19m"
func FormatRuntime(minutes int) string {
	if minutes <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FormatCurrency renders a dollar amount, "N/A" when unknown
func FormatCurrency(amount int64) string {
	if amount <= 0 {
		return "N/A"
	}
	return "$" + humanize.Comma(amount)
}

// FormatAdded renders an AddedAt timestamp relative to now, e.g. "3 hours ago"
func FormatAdded(addedAt int64, now time.Time) string {
	if addedAt <= 0 {
		return ""
	}
	return humanize.RelTime(time.UnixMilli(addedAt), now, "ago", "from now")
}

// FormatVotes renders a vote count as "12,345 votes"
func FormatVotes(count int) string {
	if count == 1 {
		return "1 vote"
	}
	return humanize.Comma(int64(count)) + " votes"
}
