package calendar

import (
	"time"

	"github.com/quantumstock/backend/internal/contracts"
)

// Pure date arithmetic over an injected trading calendar. No I/O,
// deterministic for a fixed calendar.

// NextTradingDay returns the smallest trading day >= d.
// Identity when d itself is a trading day.
func NextTradingDay(cal contracts.Calendar, d time.Time) time.Time {
	d = truncate(d)
	for !cal.IsTradingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// PrevTradingDay returns the largest trading day <= d.
func PrevTradingDay(cal contracts.Calendar, d time.Time) time.Time {
	d = truncate(d)
	for !cal.IsTradingDay(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// MinusNTradingDays steps backward from d one calendar day at a time,
// counting only trading days, until exactly n have been counted. d itself
// is excluded from the count and the walk always takes at least one step,
// so even n=0 never returns d — callers rely on the strict "before"
// semantics.
func MinusNTradingDays(cal contracts.Calendar, d time.Time, n int) time.Time {
	d = truncate(d)
	count := 0
	for {
		d = d.AddDate(0, 0, -1)
		if cal.IsTradingDay(d) {
			count++
		}
		if count >= n {
			return d
		}
	}
}

// truncate drops the time-of-day portion so date comparisons stay exact.
func truncate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}
