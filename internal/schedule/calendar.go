// Package schedule implements the pay-period recurrence and aggregation
// engine: the 14-day calendar, per-frequency occurrence generation,
// banking-day adjustment, payment-state keys and the period/active views.
//
// Everything here is pure. The current time is always threaded in as a
// parameter, never read from the clock.
package schedule

import "time"

const periodDays = 14

// Calendar anchors the 14-day pay-period grid to a fixed epoch in a single
// reference timezone. Period boundaries are calendar days in that zone, so
// DST transitions never shift them.
type Calendar struct {
	Epoch time.Time
	loc   *time.Location
}

var defaultLocation = mustLoadLocation("America/Los_Angeles")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("schedule: load location " + name + ": " + err.Error())
	}
	return loc
}

// DefaultCalendar returns the production calendar. Recorded payment keys
// embed period indexes derived from this epoch, so it is never configurable.
func DefaultCalendar() Calendar {
	return Calendar{
		Epoch: time.Date(2024, time.September, 26, 0, 0, 0, 0, defaultLocation),
		loc:   defaultLocation,
	}
}

func (c Calendar) location() *time.Location {
	if c.loc != nil {
		return c.loc
	}
	return c.Epoch.Location()
}

// IndexOf returns the pay-period index containing date. Dates before the
// epoch clamp to 0: index 0's payment keys were recorded against pre-epoch
// history and must keep resolving.
func (c Calendar) IndexOf(date time.Time) int {
	days := calendarDaysBetween(c.Epoch, date, c.location())
	if days < 0 {
		return 0
	}
	return days / periodDays
}

// Bounds returns the first and last calendar day of the period, both
// midnight in the calendar's zone. The interval is inclusive on both ends.
func (c Calendar) Bounds(index int) (start, end time.Time) {
	start = c.Epoch.AddDate(0, 0, index*periodDays)
	end = start.AddDate(0, 0, periodDays-1)
	return start, end
}

// calendarDaysBetween counts whole calendar days from a to b as observed in
// loc. Rebuilding both dates as UTC midnights keeps 23- and 25-hour DST days
// from skewing the count.
func calendarDaysBetween(a, b time.Time, loc *time.Location) int {
	return int(utcMidnight(b, loc).Sub(utcMidnight(a, loc)).Hours() / 24)
}

func utcMidnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
