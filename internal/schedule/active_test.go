package schedule

import (
	"testing"
	"time"

	"billy/internal/core"
)

func activeWindow(t *testing.T, index int) (Calendar, time.Time, time.Time) {
	t.Helper()
	cal := DefaultCalendar()
	start, end := cal.Bounds(index)
	return cal, start, end
}

func TestActiveOccurrencesPartition(t *testing.T) {
	cal, start, end := activeWindow(t, 0)

	rent := core.Bill{ID: 1, Name: "Rent", Amount: core.Money{Cents: 150000}, Frequency: core.Monthly, DueDay: 1}
	water := core.Bill{ID: 2, Name: "Water", Amount: core.Money{Cents: 4500}, Frequency: core.Monthly, DueDay: 28}
	water = water.WithPayment(PaymentKey(0, pacificDate(2024, time.September, 28)), true)

	view := ActiveOccurrences(cal, []core.Bill{rent, water}, start, end, ActiveOptions{})
	if view.Index != 0 {
		t.Fatalf("Index = %d, want 0", view.Index)
	}
	if len(view.Outstanding) != 1 || view.Outstanding[0].Bill.ID != 1 {
		t.Fatalf("Outstanding = %+v, want just rent", view.Outstanding)
	}
	if len(view.Completed) != 1 || view.Completed[0].Bill.ID != 2 {
		t.Fatalf("Completed = %+v, want just water", view.Completed)
	}
	if view.OutstandingAmount.Cents != 150000 {
		t.Errorf("OutstandingAmount = %d, want 150000", view.OutstandingAmount.Cents)
	}
	if view.CompletedAmount.Cents != 4500 {
		t.Errorf("CompletedAmount = %d, want 4500", view.CompletedAmount.Cents)
	}
	if !view.Completed[0].Paid || view.Outstanding[0].Paid {
		t.Error("Paid flags do not match their partitions")
	}
}

func TestActiveOccurrencesAdjustsUnpaidEFT(t *testing.T) {
	cal, start, end := activeWindow(t, 0)
	mon := pacificDate(2024, time.October, 7)

	// Due Saturday Oct 5.
	bill := core.Bill{ID: 1, Name: "Insurance", Amount: core.Money{Cents: 8000},
		Frequency: core.Monthly, DueDay: 5, TransactionType: core.EFT}

	view := ActiveOccurrences(cal, []core.Bill{bill}, start, end, ActiveOptions{AdjustEFT: true})
	if len(view.Outstanding) != 1 {
		t.Fatalf("Outstanding = %+v, want one entry", view.Outstanding)
	}
	occ := view.Outstanding[0]
	if !occ.DueDate.Equal(mon) {
		t.Errorf("DueDate = %s, want %s", occ.DueDate.Format("2006-01-02"), mon.Format("2006-01-02"))
	}
	if want := PaymentKey(0, mon); occ.Key != want {
		t.Errorf("Key = %q, want %q", occ.Key, want)
	}
}

func TestActiveOccurrencesPaidEFTKeepsRawDate(t *testing.T) {
	cal, start, end := activeWindow(t, 0)
	sat := pacificDate(2024, time.October, 5)

	bill := core.Bill{ID: 1, Name: "Insurance", Amount: core.Money{Cents: 8000},
		Frequency: core.Monthly, DueDay: 5, TransactionType: core.EFT}
	bill = bill.WithPayment(PaymentKey(0, sat), true)

	view := ActiveOccurrences(cal, []core.Bill{bill}, start, end, ActiveOptions{AdjustEFT: true})
	if len(view.Completed) != 1 {
		t.Fatalf("Completed = %+v, want one entry", view.Completed)
	}
	if !view.Completed[0].DueDate.Equal(sat) {
		t.Errorf("DueDate = %s, want the unshifted %s",
			view.Completed[0].DueDate.Format("2006-01-02"), sat.Format("2006-01-02"))
	}
}

func TestActiveOccurrencesDedupes(t *testing.T) {
	cal, start, end := activeWindow(t, 0)

	bill := core.Bill{ID: 1, Name: "Rent", Amount: core.Money{Cents: 150000}, Frequency: core.Monthly, DueDay: 1}
	// The same bill arriving twice collapses to one occurrence.
	view := ActiveOccurrences(cal, []core.Bill{bill, bill}, start, end, ActiveOptions{})
	if len(view.Outstanding) != 1 {
		t.Fatalf("Outstanding = %+v, want one entry after dedup", view.Outstanding)
	}
	if view.OutstandingAmount.Cents != 150000 {
		t.Errorf("OutstandingAmount = %d, want 150000", view.OutstandingAmount.Cents)
	}
}

func TestActiveOccurrencesSortModes(t *testing.T) {
	cal, start, end := activeWindow(t, 0)

	bills := []core.Bill{
		{ID: 1, Name: "apple", Amount: core.Money{Cents: 500}, Frequency: core.Monthly, DueDay: 8},
		{ID: 2, Name: "Banana", Amount: core.Money{Cents: 9000}, Frequency: core.Monthly, DueDay: 2},
		{ID: 3, Name: "cherry", Amount: core.Money{Cents: 2000}, Frequency: core.Monthly, DueDay: 28},
	}

	tests := []struct {
		name string
		mode SortMode
		want []int64 // bill IDs in expected order
	}{
		{"default is due date ascending", SortMode(""), []int64{3, 2, 1}},
		{"amount descending", SortAmount, []int64{2, 3, 1}},
		// Byte order would put "Banana" before "apple"; collation must not.
		{"name is locale aware not byte order", SortName, []int64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := ActiveOccurrences(cal, bills, start, end, ActiveOptions{Sort: tt.mode})
			if len(view.Outstanding) != len(tt.want) {
				t.Fatalf("got %d occurrences, want %d", len(view.Outstanding), len(tt.want))
			}
			for i, id := range tt.want {
				if view.Outstanding[i].Bill.ID != id {
					t.Errorf("position %d: bill %d, want %d", i, view.Outstanding[i].Bill.ID, id)
				}
			}
		})
	}
}

func TestActiveOccurrencesSortIsStable(t *testing.T) {
	cal, start, end := activeWindow(t, 0)

	// Same amount: input order must survive an amount sort.
	bills := []core.Bill{
		{ID: 1, Name: "first", Amount: core.Money{Cents: 1000}, Frequency: core.Monthly, DueDay: 2},
		{ID: 2, Name: "second", Amount: core.Money{Cents: 1000}, Frequency: core.Monthly, DueDay: 3},
	}
	view := ActiveOccurrences(cal, bills, start, end, ActiveOptions{Sort: SortAmount})
	if view.Outstanding[0].Bill.ID != 1 || view.Outstanding[1].Bill.ID != 2 {
		t.Errorf("equal amounts reordered: %d then %d", view.Outstanding[0].Bill.ID, view.Outstanding[1].Bill.ID)
	}
}
