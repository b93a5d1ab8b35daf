package sheets

import (
	"context"

	"billy/internal/core"
)

// Ports for outbound export adapters.
type (
	// BillExporter mirrors bill snapshots into an external sheet. Append
	// overwrites the bill's existing row when one exists, so repeated syncs
	// stay idempotent.
	BillExporter interface {
		Append(ctx context.Context, b core.Bill) (rowRef string, err error)
		Remove(ctx context.Context, billID int64) error
	}
)
