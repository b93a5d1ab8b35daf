package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"billy/internal/core"

	_ "modernc.org/sqlite"
)

// Sync status values for the export worker's pending sweep.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const billColumns = "id, name, amount_cents, frequency, due_day, transaction_type, auto_pay, payment_history"

// ListBills returns all bills, oldest first.
func (r *SQLiteRepository) ListBills(ctx context.Context) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+billColumns+" FROM bills ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return bills, nil
}

// GetBill returns one bill or core.ErrBillNotFound.
func (r *SQLiteRepository) GetBill(ctx context.Context, id int64) (core.Bill, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+billColumns+" FROM bills WHERE id = ?", id)
	b, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bill{}, core.ErrBillNotFound
	}
	return b, err
}

// CreateBill inserts a bill under its pre-assigned ID and marks it pending
// for the export sweep.
func (r *SQLiteRepository) CreateBill(ctx context.Context, b core.Bill) error {
	history, err := marshalHistory(b.PaymentHistory)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO bills (id, name, amount_cents, frequency, due_day, transaction_type, auto_pay, payment_history, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Amount.Cents, string(b.Frequency), b.DueDay,
		string(b.TransactionType), b.AutoPay, history, SyncPending)
	if err != nil {
		return fmt.Errorf("create bill: %w", err)
	}

	slog.InfoContext(ctx, "Bill saved",
		"id", b.ID,
		"name", b.Name,
		"amount_cents", b.Amount.Cents,
		"frequency", b.Frequency)
	return nil
}

// UpdateBill overwrites a bill row, bumps its version and resets it to
// pending so the next sweep re-exports it.
func (r *SQLiteRepository) UpdateBill(ctx context.Context, b core.Bill) error {
	history, err := marshalHistory(b.PaymentHistory)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE bills
		SET name = ?, amount_cents = ?, frequency = ?, due_day = ?,
		    transaction_type = ?, auto_pay = ?, payment_history = ?,
		    sync_status = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		b.Name, b.Amount.Cents, string(b.Frequency), b.DueDay,
		string(b.TransactionType), b.AutoPay, history, SyncPending, b.ID)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	return requireRow(res, b.ID)
}

// GetBillVersion returns the current row version, used for sync messages.
func (r *SQLiteRepository) GetBillVersion(ctx context.Context, id int64) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx, "SELECT version FROM bills WHERE id = ?", id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, core.ErrBillNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get bill version: %w", err)
	}
	return version, nil
}

func (r *SQLiteRepository) DeleteBill(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	return requireRow(res, id)
}

// PendingSyncBill is the minimal row the export worker needs to build a
// sync message.
type PendingSyncBill struct {
	ID        int64
	Version   int64
	UpdatedAt time.Time
}

// GetPendingSyncBills returns bills awaiting export, oldest change first.
func (r *SQLiteRepository) GetPendingSyncBills(ctx context.Context, limit int) ([]PendingSyncBill, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version, updated_at FROM bills
		WHERE sync_status = ? ORDER BY updated_at LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync bills: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncBill
	for rows.Next() {
		var p PendingSyncBill
		var updatedAt string
		if err := rows.Scan(&p.ID, &p.Version, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync bill: %w", err)
		}
		p.UpdatedAt, _ = time.Parse("2006-01-02 15:04:05", updatedAt)
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get pending sync bills: %w", err)
	}
	return pending, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE bills SET sync_status = ? WHERE id = ?", SyncDone, id); err != nil {
		return fmt.Errorf("mark bill synced: %w", err)
	}
	slog.InfoContext(ctx, "Bill marked as synced", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE bills SET sync_status = ? WHERE id = ?", SyncError, id); err != nil {
		return fmt.Errorf("mark bill sync error: %w", err)
	}
	slog.WarnContext(ctx, "Bill marked with sync error", "id", id)
	return nil
}

// GetSettings returns the full settings map. A missing table row simply
// means the default applies, so an empty map is a valid result.
func (r *SQLiteRepository) GetSettings(ctx context.Context) (core.Settings, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	defer rows.Close()

	settings := make(core.Settings)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

// PutSettings upserts every given key.
func (r *SQLiteRepository) PutSettings(ctx context.Context, settings core.Settings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	defer tx.Rollback()

	for k, v := range settings {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			k, v); err != nil {
			return fmt.Errorf("put setting %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (core.Bill, error) {
	var b core.Bill
	var frequency, txType, history string
	if err := row.Scan(&b.ID, &b.Name, &b.Amount.Cents, &frequency, &b.DueDay, &txType, &b.AutoPay, &history); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Bill{}, err
		}
		return core.Bill{}, fmt.Errorf("scan bill: %w", err)
	}
	b.Frequency = core.Frequency(frequency)
	b.TransactionType = core.TransactionType(txType)
	if history != "" && history != "{}" {
		if err := json.Unmarshal([]byte(history), &b.PaymentHistory); err != nil {
			return core.Bill{}, fmt.Errorf("decode payment history for bill %d: %w", b.ID, err)
		}
	}
	return b, nil
}

func marshalHistory(history map[string]bool) (string, error) {
	if len(history) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("encode payment history: %w", err)
	}
	return string(data), nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bill %d: %w", id, core.ErrBillNotFound)
	}
	return nil
}
