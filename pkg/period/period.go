package period

import (
	"math"
	"time"
)

// LookbackDays is the rolling freshness window applied to payments. A payment
// older than this no longer satisfies compliance, regardless of which billing
// period it was recorded against.
const LookbackDays = 30

// CurrentKey returns the billing period key for the given instant: the first
// calendar day of its month, truncated to midnight UTC.
func CurrentKey(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// LookbackBoundary returns the oldest paid_at that still counts as fresh:
// a fixed 30-day rolling window behind now. Calendar-month arithmetic is
// deliberately not used here so the gate and the evaluator agree.
func LookbackBoundary(now time.Time) time.Time {
	return now.UTC().AddDate(0, 0, -LookbackDays)
}

// BlockDate returns the instant at which access lapses for a payment made at
// paidAt.
func BlockDate(paidAt time.Time) time.Time {
	return paidAt.UTC().AddDate(0, 0, LookbackDays)
}

// DaysUntilBlock returns ceil((blockDate - now) / 24h), floored at zero.
func DaysUntilBlock(blockDate, now time.Time) int {
	diff := blockDate.Sub(now)
	if diff <= 0 {
		return 0
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// SameKey reports whether two period keys identify the same billing month.
func SameKey(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month()
}
