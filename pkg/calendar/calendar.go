// Package calendar maps scheduling slots to calendar dates.
//
// A slot is a discrete unit of scheduling time. Slot 0 is the project start
// date. Without weekend skipping, slot N is N calendar days later. With
// weekend skipping, slot N is the N-th working day (Monday to Friday) after
// the start. A project that starts on a weekend with skipping enabled begins
// on the following Monday.
package calendar

import "time"

// DateLayout is the wire format of calendar dates.
const DateLayout = time.DateOnly

// Calendar converts slots to dates for one project.
type Calendar struct {
	start        time.Time
	skipWeekends bool
}

// New returns a calendar anchored at start. The time of day and location of
// start are discarded.
//
// When skipWeekends is set and start falls on a Saturday or Sunday, slot 0 is
// anchored on the following Monday so that no slot ever maps to a weekend.
func New(start time.Time, skipWeekends bool) Calendar {
	day := Truncate(start)
	if skipWeekends {
		for IsWeekend(day) {
			day = day.AddDate(0, 0, 1)
		}
	}
	return Calendar{start: day, skipWeekends: skipWeekends}
}

// Start returns the date of slot 0.
func (c Calendar) Start() time.Time { return c.start }

// SkipWeekends reports whether weekends are excluded.
func (c Calendar) SkipWeekends() bool { return c.skipWeekends }

// DateAt returns the date of slot. Negative slots are treated as 0.
func (c Calendar) DateAt(slot int) time.Time {
	if slot <= 0 {
		return c.start
	}
	if !c.skipWeekends {
		return c.start.AddDate(0, 0, slot)
	}

	// Five working days from a weekday always span one calendar week.
	day := c.start.AddDate(0, 0, 7*(slot/5))
	for n := 0; n < slot%5; {
		day = day.AddDate(0, 0, 1)
		if !IsWeekend(day) {
			n++
		}
	}
	return day
}

// Truncate drops the time of day from t and returns midnight UTC of the same
// calendar date.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
