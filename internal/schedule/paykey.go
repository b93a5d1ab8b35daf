package schedule

import (
	"fmt"
	"time"
)

// isoMillis renders an instant exactly like JavaScript's Date.toISOString:
// UTC, millisecond precision, trailing Z.
const isoMillis = "2006-01-02T15:04:05.000Z"

// PaymentKey builds the payment-history key for one occurrence of a bill in
// one pay period. The format matches keys recorded by earlier releases,
// which used JS Date.toISOString, so existing history keeps resolving.
func PaymentKey(index int, date time.Time) string {
	return fmt.Sprintf("%d_%s", index, date.UTC().Format(isoMillis))
}
