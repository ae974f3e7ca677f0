package calendar

import "time"

const dateKey = "2006-01-02"

// Table is a lookup-table calendar: a day trades when it is a weekday that
// is not a listed holiday, or a weekend day listed as a working day
// (mainland China schedules make-up trading days on some weekends for the
// exchanges' settlement calendar, though the A-share market itself stays
// closed — keep both sets injectable so either convention can be expressed).
type Table struct {
	holidays    map[string]bool
	workingDays map[string]bool
}

// NewTable builds a Table from explicit holiday and working-weekend dates.
func NewTable(holidays, workingWeekends []time.Time) *Table {
	t := &Table{
		holidays:    make(map[string]bool, len(holidays)),
		workingDays: make(map[string]bool, len(workingWeekends)),
	}
	for _, d := range holidays {
		t.holidays[d.Format(dateKey)] = true
	}
	for _, d := range workingWeekends {
		t.workingDays[d.Format(dateKey)] = true
	}
	return t
}

// IsTradingDay implements contracts.Calendar.
func (t *Table) IsTradingDay(d time.Time) bool {
	key := d.Format(dateKey)
	if t.holidays[key] {
		return false
	}
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return t.workingDays[key]
	}
	return true
}

// China returns the built-in mainland-China trading calendar covering
// 2024 through 2026 (State Council holiday schedule). Dates outside the
// covered years fall back to plain weekday logic.
func China() *Table {
	return NewTable(chinaHolidays(), nil)
}

func chinaHolidays() []time.Time {
	days := []string{
		// 2024
		"2024-01-01",
		"2024-02-09", "2024-02-12", "2024-02-13", "2024-02-14", "2024-02-15", "2024-02-16",
		"2024-04-04", "2024-04-05",
		"2024-05-01", "2024-05-02", "2024-05-03",
		"2024-06-10",
		"2024-09-16", "2024-09-17",
		"2024-10-01", "2024-10-02", "2024-10-03", "2024-10-04", "2024-10-07",
		// 2025
		"2025-01-01",
		"2025-01-28", "2025-01-29", "2025-01-30", "2025-01-31", "2025-02-03", "2025-02-04",
		"2025-04-04",
		"2025-05-01", "2025-05-02", "2025-05-05",
		"2025-06-02",
		"2025-10-01", "2025-10-02", "2025-10-03", "2025-10-06", "2025-10-07", "2025-10-08",
		// 2026
		"2026-01-01", "2026-01-02",
		"2026-02-16", "2026-02-17", "2026-02-18", "2026-02-19", "2026-02-20",
		"2026-04-06",
		"2026-05-01", "2026-05-04", "2026-05-05",
		"2026-06-19",
		"2026-09-25",
		"2026-10-01", "2026-10-02", "2026-10-05", "2026-10-06", "2026-10-07",
	}

	out := make([]time.Time, 0, len(days))
	for _, s := range days {
		d, err := time.Parse(dateKey, s)
		if err != nil {
			panic("calendar: bad built-in holiday date " + s)
		}
		out = append(out, d)
	}
	return out
}
