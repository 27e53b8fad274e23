package journal

import (
	"math"
	"time"
)

const dateLayout = "2006-01-02"

// DateOf returns the civil date of t in t's own location, as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a civil date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(dateLayout)
}

// ParseDate parses YYYY-MM-DD into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// Instants are stored as unix nanoseconds, which cover roughly the years
// 1678 through 2262.
var (
	minInstant = time.Unix(0, math.MinInt64)
	maxInstant = time.Unix(0, math.MaxInt64)
)

// Storable reports whether t fits the ledger's nanosecond encoding.
func Storable(t time.Time) bool {
	return !t.Before(minInstant) && !t.After(maxInstant)
}
