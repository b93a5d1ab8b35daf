package schedule

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"billy/internal/core"
)

type SortMode string

const (
	SortDueDate SortMode = "dueDate"
	SortAmount  SortMode = "amount"
	SortName    SortMode = "name"
)

// Occurrence is one concrete due date of a bill inside the active period,
// after banking-day adjustment.
type Occurrence struct {
	Bill    core.Bill `json:"bill"`
	DueDate time.Time `json:"dueDate"`
	Paid    bool      `json:"paid"`
	Key     string    `json:"paymentKey"`
}

// ActiveView partitions a period's occurrences into outstanding and
// completed, each sorted and totalled.
type ActiveView struct {
	Index             int          `json:"index"`
	Outstanding       []Occurrence `json:"outstanding"`
	Completed         []Occurrence `json:"completed"`
	OutstandingAmount core.Money   `json:"outstandingAmount"`
	CompletedAmount   core.Money   `json:"completedAmount"`
}

type ActiveOptions struct {
	AdjustEFT bool
	Sort      SortMode
}

// ActiveOccurrences expands bills over [start, end], adjusts weekend EFT
// dates, dedupes, and splits the result by paid state. Payment keys use the
// period index of start, so the view and the toggle endpoint always agree
// on the key for a given occurrence.
//
// Duplicate (bill, adjusted date) pairs collapse first-seen-wins. A monthly
// bill due on the 31st can otherwise show twice when the shift from two
// source dates lands on the same Monday.
func ActiveOccurrences(cal Calendar, bills []core.Bill, start, end time.Time, opts ActiveOptions) ActiveView {
	view := ActiveView{Index: cal.IndexOf(start)}
	seen := make(map[occurrenceID]struct{})

	for _, b := range bills {
		for _, due := range Occurrences(b, start, end) {
			rawPaid := b.Paid(PaymentKey(view.Index, due))
			adjusted := AdjustBankingDay(due, b.TransactionType, rawPaid, opts.AdjustEFT)

			id := occurrenceID{bill: b.ID, unix: adjusted.Unix()}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			key := PaymentKey(view.Index, adjusted)
			occ := Occurrence{Bill: b, DueDate: adjusted, Paid: b.Paid(key), Key: key}
			if occ.Paid {
				view.Completed = append(view.Completed, occ)
				view.CompletedAmount.Cents += b.Amount.Cents
			} else {
				view.Outstanding = append(view.Outstanding, occ)
				view.OutstandingAmount.Cents += b.Amount.Cents
			}
		}
	}

	sortOccurrences(view.Outstanding, opts.Sort)
	sortOccurrences(view.Completed, opts.Sort)
	return view
}

type occurrenceID struct {
	bill int64
	unix int64
}

func sortOccurrences(occs []Occurrence, mode SortMode) {
	switch mode {
	case SortAmount:
		sort.SliceStable(occs, func(i, j int) bool {
			return occs[i].Bill.Amount.Cents > occs[j].Bill.Amount.Cents
		})
	case SortName:
		c := collate.New(language.English)
		sort.SliceStable(occs, func(i, j int) bool {
			return c.CompareString(occs[i].Bill.Name, occs[j].Bill.Name) < 0
		})
	default:
		sort.SliceStable(occs, func(i, j int) bool {
			return occs[i].DueDate.Before(occs[j].DueDate)
		})
	}
}
