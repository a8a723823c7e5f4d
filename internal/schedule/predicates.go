// Package schedule holds the pure predicates deciding whether a catalog
// task is due on a given calendar date. Weekly and monthly rules fail open
// (missing data means due every day); the yearly rule fails closed (missing
// data means never active), since yearly tasks are rare and high-stakes and
// an unset date must not silently recur daily.
package schedule

import (
	"time"

	"github.com/fairflowapp/fairflow/models"
)

// WeeklyDue reports whether a weekly catalog entry is due on the reference
// date. An unset, "any" or empty weekday set matches every day; otherwise
// the reference weekday (0=Sunday..6=Saturday) must be a member.
func WeeklyDue(entry models.CatalogEntry, ref time.Time) bool {
	return entry.ScheduleWeekdays.Contains(int(ref.Weekday()))
}

// MonthlyDue reports whether a monthly catalog entry is due on the
// reference date. Unset, "any", non-numeric or out-of-range values fail
// open; otherwise the scheduled day must equal the reference day-of-month.
func MonthlyDue(entry models.CatalogEntry, ref time.Time) bool {
	f := entry.ScheduleDayOfMonth
	if f == nil || f.IsAny() {
		return true
	}
	day, ok := f.Int()
	if !ok || day < 1 || day > 31 {
		return true
	}
	return day == ref.Day()
}

// YearlySchedule extracts the validated (month, day) pair from a yearly
// catalog entry. Both fields are required; missing or invalid values
// report false and the entry is permanently inactive.
func YearlySchedule(entry models.CatalogEntry) (month, day int, ok bool) {
	if entry.ScheduleMonth == nil || entry.ScheduleDay == nil {
		return 0, 0, false
	}
	m, mok := entry.ScheduleMonth.Int()
	d, dok := entry.ScheduleDay.Int()
	if !mok || !dok || m < 1 || m > 12 || d < 1 || d > 31 {
		return 0, 0, false
	}
	return m, d, true
}

// YearlyActive reports whether a yearly catalog entry should appear in the
// actionable list on the reference date: the task is not completed and the
// reference (month, day) has reached the scheduled (month, day). The
// comparison is lexicographic month-then-day with no year wraparound.
func YearlyActive(entry models.CatalogEntry, completed bool, ref time.Time) bool {
	if completed {
		return false
	}
	sm, sd, ok := YearlySchedule(entry)
	if !ok {
		return false
	}
	m, d := int(ref.Month()), ref.Day()
	return m > sm || (m == sm && d >= sd)
}

// DueToday dispatches the per-tab "due on this date" rule. Opening and
// closing lists are daily and always due; the yearly rule reduces to its
// schedule gate (completion is evaluated by the caller against instance
// state).
func DueToday(tab models.Tab, entry models.CatalogEntry, ref time.Time) bool {
	switch tab {
	case models.TabWeekly:
		return WeeklyDue(entry, ref)
	case models.TabMonthly:
		return MonthlyDue(entry, ref)
	case models.TabYearly:
		return YearlyActive(entry, false, ref)
	default:
		return true
	}
}
