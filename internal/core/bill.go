package core

import (
	"strings"
)

const (
	Monthly  Frequency = "monthly"
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
)

const (
	EFT              TransactionType = "EFT"
	Cash             TransactionType = "Cash"
	CreditDebit      TransactionType = "Credit/Debit"
	InternalTransfer TransactionType = "Internal Transfer"
)

type (
	Frequency string

	TransactionType string

	// Bill is a recurring bill template. Concrete due dates are derived from
	// Frequency and DueDay by the schedule package; Bill itself never stores
	// occurrence dates.
	Bill struct {
		ID              int64           `json:"id"`
		Name            string          `json:"name"`
		Amount          Money           `json:"amount"`
		Frequency       Frequency       `json:"frequency"`
		DueDay          int             `json:"dueDay"`
		TransactionType TransactionType `json:"transactionType"`
		AutoPay         bool            `json:"autoPay"`
		// PaymentHistory maps payment-state keys to paid flags. Absent keys
		// mean unpaid. The map is replaced wholesale on toggle, never mutated
		// in place.
		PaymentHistory map[string]bool `json:"paymentHistory,omitempty"`
	}
)

// NormalizeFrequency resolves the implicit monthly default once, at the data
// boundary. Unknown or empty strings become Monthly so the engine never has
// to re-check.
func NormalizeFrequency(s string) Frequency {
	switch Frequency(strings.TrimSpace(s)) {
	case Weekly:
		return Weekly
	case Biweekly:
		return Biweekly
	default:
		return Monthly
	}
}

// Normalize returns a copy of the bill with defaults resolved.
func (b Bill) Normalize() Bill {
	b.Frequency = NormalizeFrequency(string(b.Frequency))
	if b.TransactionType == "" {
		b.TransactionType = EFT
	}
	return b
}

func (b Bill) Validate() error {
	if len(strings.TrimSpace(b.Name)) == 0 {
		return ErrEmptyName
	}
	if len(b.Name) > 200 {
		return ErrNameTooLong
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	switch NormalizeFrequency(string(b.Frequency)) {
	case Weekly:
		// Day of week, 0=Sunday.
		if b.DueDay < 0 || b.DueDay > 6 {
			return ErrInvalidDueDay
		}
	case Biweekly:
		// Pinned to the period end; DueDay is ignored.
	default:
		// Day of month. Months shorter than DueDay simply skip the
		// occurrence, so 29-31 are legal.
		if b.DueDay < 1 || b.DueDay > 31 {
			return ErrInvalidDueDay
		}
	}
	switch b.TransactionType {
	case EFT, Cash, CreditDebit, InternalTransfer, "":
	default:
		return ErrInvalidTransactionType
	}
	return nil
}

// Paid reports the recorded paid flag for a payment-state key. Missing keys
// are unpaid, never an error.
func (b Bill) Paid(key string) bool {
	return b.PaymentHistory[key]
}

// WithPayment returns a copy of the bill whose payment history has key set to
// paid. The history map is copied so concurrent readers of the original bill
// never observe a half-updated map.
func (b Bill) WithPayment(key string, paid bool) Bill {
	hist := make(map[string]bool, len(b.PaymentHistory)+1)
	for k, v := range b.PaymentHistory {
		hist[k] = v
	}
	hist[key] = paid
	b.PaymentHistory = hist
	return b
}
