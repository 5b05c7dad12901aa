package fines

import "time"

// Fine arithmetic is pure and integer-only: amounts are cents, day
// counts are whole calendar days with partial days rounded up. No DB,
// no context, no floating point. Results must be reproducible
// bit-for-bit across runs.

const day = 24 * time.Hour

// OverdueDays returns how many billable days a loan is overdue at the
// given moment: ceil(today - dueDate in days) minus the grace period,
// floored at zero. Not-yet-due and within-grace loans yield 0.
func OverdueDays(dueDate, today time.Time, graceDays int) int {
	diff := today.Sub(dueDate)
	if diff <= 0 {
		return 0
	}

	days := int((diff + day - 1) / day)
	days -= graceDays
	if days < 0 {
		return 0
	}

	return days
}

// Amount returns the fine in cents for the given overdue days:
// overdueDays * perDayCents, clamped at capCents. Monotonic
// non-decreasing in overdueDays.
func Amount(overdueDays int, perDayCents, capCents int64) int64 {
	if overdueDays <= 0 || perDayCents <= 0 {
		return 0
	}

	amount := int64(overdueDays) * perDayCents
	if amount > capCents {
		return capCents
	}

	return amount
}

// DayOf truncates an instant to its UTC calendar day. Fine dates are
// compared and deduplicated at day granularity.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
