package schedule

import (
	"testing"
	"time"

	"billy/internal/core"
)

func datesEqual(got []time.Time, want []time.Time) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !got[i].Equal(want[i]) {
			return false
		}
	}
	return true
}

func TestOccurrencesMonthly(t *testing.T) {
	cal := DefaultCalendar()

	tests := []struct {
		name   string
		dueDay int
		index  int
		want   []time.Time
	}{
		{
			// Period 0 is Sep 26 - Oct 9: due day 1 falls in the next month.
			name: "due day in next month", dueDay: 1, index: 0,
			want: []time.Time{pacificDate(2024, time.October, 1)},
		},
		{
			name: "due day in start month", dueDay: 28, index: 0,
			want: []time.Time{pacificDate(2024, time.September, 28)},
		},
		{
			name: "start boundary inclusive", dueDay: 26, index: 0,
			want: []time.Time{pacificDate(2024, time.September, 26)},
		},
		{
			name: "end boundary inclusive", dueDay: 9, index: 0,
			want: []time.Time{pacificDate(2024, time.October, 9)},
		},
		{
			name: "outside interval", dueDay: 15, index: 0,
			want: nil,
		},
		{
			// Period 9 is Jan 30 - Feb 12, 2025. Day 31 exists in January
			// but not in February; the February candidate is skipped, not
			// rolled into March.
			name: "short month keeps valid candidate", dueDay: 31, index: 9,
			want: []time.Time{pacificDate(2025, time.January, 31)},
		},
		{
			// Period 10 is Feb 13 - Feb 26, 2025. Day 30 exists in neither
			// reachable position.
			name: "short month skips entirely", dueDay: 30, index: 10,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := cal.Bounds(tt.index)
			b := core.Bill{Frequency: core.Monthly, DueDay: tt.dueDay}
			got := Occurrences(b, start, end)
			if !datesEqual(got, tt.want) {
				t.Errorf("Occurrences(dueDay=%d, period %d) = %v, want %v", tt.dueDay, tt.index, got, tt.want)
			}
		})
	}
}

func TestOccurrencesWeekly(t *testing.T) {
	cal := DefaultCalendar()
	start, end := cal.Bounds(0)

	// A 14-day window holds exactly two of every weekday.
	for weekday := 0; weekday < 7; weekday++ {
		b := core.Bill{Frequency: core.Weekly, DueDay: weekday}
		got := Occurrences(b, start, end)
		if len(got) != 2 {
			t.Fatalf("weekday %d: got %d occurrences, want 2", weekday, len(got))
		}
		for _, d := range got {
			if int(d.Weekday()) != weekday {
				t.Errorf("weekday %d: occurrence %s falls on %s", weekday, d.Format("2006-01-02"), d.Weekday())
			}
		}
	}

	// Spot check Sundays in period 0.
	sundays := Occurrences(core.Bill{Frequency: core.Weekly, DueDay: 0}, start, end)
	want := []time.Time{pacificDate(2024, time.September, 29), pacificDate(2024, time.October, 6)}
	if !datesEqual(sundays, want) {
		t.Errorf("sundays = %v, want %v", sundays, want)
	}
}

func TestOccurrencesBiweekly(t *testing.T) {
	cal := DefaultCalendar()
	start, end := cal.Bounds(4)

	b := core.Bill{Frequency: core.Biweekly, DueDay: 17}
	got := Occurrences(b, start, end)
	if len(got) != 1 || !got[0].Equal(end) {
		t.Errorf("biweekly = %v, want exactly [%s]", got, end.Format("2006-01-02"))
	}
}

func TestOccurrencesUnknownFrequencyActsMonthly(t *testing.T) {
	cal := DefaultCalendar()
	start, end := cal.Bounds(0)

	odd := Occurrences(core.Bill{Frequency: "quarterly", DueDay: 1}, start, end)
	monthly := Occurrences(core.Bill{Frequency: core.Monthly, DueDay: 1}, start, end)
	if !datesEqual(odd, monthly) {
		t.Errorf("unknown frequency = %v, want monthly result %v", odd, monthly)
	}
}
