// Package worker moves bill snapshots from SQLite to the configured
// exporter, driven by the AMQP change feed with a periodic sweep as backup.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"billy/internal/amqp"
	"billy/internal/core"
	"billy/internal/sheets"
	"billy/internal/storage"
)

type ExportWorker struct {
	storage   *storage.SQLiteRepository
	exporter  sheets.BillExporter
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, exporter sheets.BillExporter, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleMessage processes one change-feed message.
func (w *ExportWorker) HandleMessage(ctx context.Context, msg *amqp.BillSyncMessage) error {
	slog.InfoContext(ctx, "Processing bill message",
		"id", msg.ID,
		"version", msg.Version,
		"action", msg.Action)

	switch msg.Action {
	case amqp.ActionDelete:
		if err := w.exporter.Remove(ctx, msg.ID); err != nil {
			return fmt.Errorf("remove bill from export target: %w", err)
		}
		return nil
	default:
		return w.exportBill(ctx, msg.ID)
	}
}

// ProcessPending sweeps bills whose changes never made it through the
// queue. This is the backup path for lost AMQP messages.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncBills(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending bills: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending bills", "count", len(pending))

	for _, p := range pending {
		if err := w.exportBill(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export bill", "id", p.ID, "error", err)
		}
	}
	return nil
}

// StartupSyncCheck drains a larger pending batch once at worker startup,
// recovering from downtime while the server kept mutating bills.
func (w *ExportWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncBills(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending bills for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending bills found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending bills on startup, processing", "count", len(pending))

	synced, failed := 0, 0
	for _, p := range pending {
		if err := w.exportBill(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export bill during startup", "id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *ExportWorker) exportBill(ctx context.Context, id int64) error {
	bill, err := w.storage.GetBill(ctx, id)
	if err != nil {
		// Deleted before the sync message was consumed: nothing to export.
		if errors.Is(err, core.ErrBillNotFound) {
			slog.WarnContext(ctx, "Bill vanished before export, skipping", "id", id)
			return nil
		}
		return fmt.Errorf("get bill from storage: %w", err)
	}

	ref, err := w.exporter.Append(ctx, bill)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to export target: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		// The export itself worked; only the bookkeeping failed.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Bill exported",
		"id", id,
		"sheets_ref", ref,
		"name", bill.Name,
		"amount_cents", bill.Amount.Cents)
	return nil
}
