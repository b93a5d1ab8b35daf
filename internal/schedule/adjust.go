package schedule

import (
	"time"

	"billy/internal/core"
)

// AdjustBankingDay shifts a weekend due date to the following Monday, but
// only for unpaid EFT occurrences and only when the feature is enabled.
// Already-paid occurrences keep their recorded date so their payment keys
// stay resolvable. Weekday dates pass through untouched, which makes the
// shift idempotent.
func AdjustBankingDay(date time.Time, tx core.TransactionType, paid, enabled bool) time.Time {
	if !enabled || tx != core.EFT || paid {
		return date
	}
	switch date.Weekday() {
	case time.Saturday:
		return date.AddDate(0, 0, 2)
	case time.Sunday:
		return date.AddDate(0, 0, 1)
	default:
		return date
	}
}
