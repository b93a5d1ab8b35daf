package schedule

import (
	"time"

	"billy/internal/core"
)

// Occurrences expands a bill into its concrete due dates inside [start, end],
// both inclusive. Dates come back as midnights in start's zone, ascending.
//
// Monthly bills produce the due day in start's month and in the following
// month, dropping any candidate whose month is too short (a dueDay of 31
// never lands in February as March 2nd, it just skips). Weekly bills match
// DueDay as a weekday, 0 = Sunday. Biweekly bills produce exactly one
// occurrence pinned to the period end.
func Occurrences(b core.Bill, start, end time.Time) []time.Time {
	switch core.NormalizeFrequency(string(b.Frequency)) {
	case core.Weekly:
		return weeklyOccurrences(b.DueDay, start, end)
	case core.Biweekly:
		return []time.Time{end}
	default:
		return monthlyOccurrences(b.DueDay, start, end)
	}
}

func monthlyOccurrences(dueDay int, start, end time.Time) []time.Time {
	var out []time.Time
	y, m, _ := start.Date()
	for i := 0; i < 2; i++ {
		cy, cm := normalizeMonth(y, int(m)+i)
		if dueDay < 1 || dueDay > daysInMonth(cy, cm) {
			continue
		}
		d := time.Date(cy, cm, dueDay, 0, 0, 0, 0, start.Location())
		if !d.Before(start) && !d.After(end) {
			out = append(out, d)
		}
	}
	return out
}

func weeklyOccurrences(weekday int, start, end time.Time) []time.Time {
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if int(d.Weekday()) == weekday {
			out = append(out, d)
		}
	}
	return out
}

func normalizeMonth(year, month int) (int, time.Month) {
	for month > 12 {
		month -= 12
		year++
	}
	return year, time.Month(month)
}

// daysInMonth exploits time.Date's day-zero normalization: day 0 of the next
// month is the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
