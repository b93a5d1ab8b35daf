package schedule

import (
	"time"

	"billy/internal/core"
)

// maxPeriodSpan caps how many periods a single request can expand in either
// direction, so a bad query parameter cannot turn into an unbounded loop.
const maxPeriodSpan = 120

type PeriodStatus string

const (
	StatusPast    PeriodStatus = "past"
	StatusCurrent PeriodStatus = "current"
	StatusFuture  PeriodStatus = "future"
)

// PayPeriod is one 14-day window with its aggregated bill totals.
// TotalAmount counts every occurrence due in the window; OutstandingAmount
// counts only the unpaid ones.
type PayPeriod struct {
	Index             int          `json:"index"`
	Start             time.Time    `json:"start"`
	End               time.Time    `json:"end"`
	Status            PeriodStatus `json:"status"`
	TotalAmount       core.Money   `json:"totalAmount"`
	OutstandingAmount core.Money   `json:"outstandingAmount"`
}

type PeriodOptions struct {
	PastPeriods   int
	FuturePeriods int
	// AdjustEFT shifts unpaid weekend EFT dates before the outstanding
	// lookup, so the outstanding flag agrees with what the list view shows.
	AdjustEFT bool
}

// BuildPeriods aggregates bills over a run of pay periods around now:
// exactly PastPeriods+FuturePeriods windows ascending from
// current-PastPeriods, with the current period counting as the first of
// the future run. The window may reach before the epoch; such periods
// get negative indexes and naturally aggregate to zero.
func BuildPeriods(cal Calendar, bills []core.Bill, now time.Time, opts PeriodOptions) []PayPeriod {
	current := cal.IndexOf(now)
	past := clampSpan(opts.PastPeriods)
	future := clampSpan(opts.FuturePeriods)

	periods := make([]PayPeriod, 0, past+future)
	for idx := current - past; idx < current+future; idx++ {
		start, end := cal.Bounds(idx)
		p := PayPeriod{
			Index:  idx,
			Start:  start,
			End:    end,
			Status: statusOf(idx, current),
		}
		for _, b := range bills {
			for _, due := range Occurrences(b, start, end) {
				p.TotalAmount.Cents += b.Amount.Cents
				if !paidAfterAdjustment(b, idx, due, opts.AdjustEFT) {
					p.OutstandingAmount.Cents += b.Amount.Cents
				}
			}
		}
		periods = append(periods, p)
	}
	return periods
}

// paidAfterAdjustment resolves the paid flag for one occurrence. The raw
// date's key decides whether the banking-day shift applies; the shifted
// date's key is the one the toggle endpoint writes, so it decides paid.
func paidAfterAdjustment(b core.Bill, index int, due time.Time, adjustEFT bool) bool {
	rawPaid := b.Paid(PaymentKey(index, due))
	adjusted := AdjustBankingDay(due, b.TransactionType, rawPaid, adjustEFT)
	return b.Paid(PaymentKey(index, adjusted))
}

func statusOf(index, current int) PeriodStatus {
	switch {
	case index < current:
		return StatusPast
	case index > current:
		return StatusFuture
	default:
		return StatusCurrent
	}
}

func clampSpan(n int) int {
	if n < 0 {
		return 0
	}
	if n > maxPeriodSpan {
		return maxPeriodSpan
	}
	return n
}
