package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"billy/internal/core"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "billy.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestBillCRUD(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	bill := core.Bill{
		ID:              1700000000000,
		Name:            "Rent",
		Amount:          core.Money{Cents: 150000},
		Frequency:       core.Monthly,
		DueDay:          1,
		TransactionType: core.EFT,
		AutoPay:         true,
		PaymentHistory:  map[string]bool{"0_2024-10-01T07:00:00.000Z": true},
	}

	if err := repo.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	got, err := repo.GetBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetBill: %v", err)
	}
	if got.Name != "Rent" || got.Amount.Cents != 150000 || got.Frequency != core.Monthly {
		t.Errorf("GetBill = %+v", got)
	}
	if !got.AutoPay || got.TransactionType != core.EFT {
		t.Errorf("GetBill flags = %+v", got)
	}
	if !got.Paid("0_2024-10-01T07:00:00.000Z") {
		t.Error("payment history did not round-trip")
	}

	got.Name = "Rent updated"
	got.Amount = core.Money{Cents: 160000}
	if err := repo.UpdateBill(ctx, got); err != nil {
		t.Fatalf("UpdateBill: %v", err)
	}
	got, err = repo.GetBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetBill after update: %v", err)
	}
	if got.Name != "Rent updated" || got.Amount.Cents != 160000 {
		t.Errorf("after update = %+v", got)
	}

	bills, err := repo.ListBills(ctx)
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(bills) != 1 {
		t.Fatalf("ListBills returned %d bills, want 1", len(bills))
	}

	if err := repo.DeleteBill(ctx, bill.ID); err != nil {
		t.Fatalf("DeleteBill: %v", err)
	}
	if _, err := repo.GetBill(ctx, bill.ID); !errors.Is(err, core.ErrBillNotFound) {
		t.Errorf("GetBill after delete = %v, want ErrBillNotFound", err)
	}
}

func TestBillNotFound(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if _, err := repo.GetBill(ctx, 42); !errors.Is(err, core.ErrBillNotFound) {
		t.Errorf("GetBill = %v, want ErrBillNotFound", err)
	}
	if err := repo.UpdateBill(ctx, core.Bill{ID: 42, Name: "ghost"}); !errors.Is(err, core.ErrBillNotFound) {
		t.Errorf("UpdateBill = %v, want ErrBillNotFound", err)
	}
	if err := repo.DeleteBill(ctx, 42); !errors.Is(err, core.ErrBillNotFound) {
		t.Errorf("DeleteBill = %v, want ErrBillNotFound", err)
	}
}

func TestPendingSyncLifecycle(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		if err := repo.CreateBill(ctx, core.Bill{ID: i, Name: "bill", Frequency: core.Monthly, DueDay: 1}); err != nil {
			t.Fatalf("CreateBill %d: %v", i, err)
		}
	}

	pending, err := repo.GetPendingSyncBills(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncBills: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("pending = %d, want 3", len(pending))
	}

	if err := repo.MarkSynced(ctx, 1); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	if err := repo.MarkSyncError(ctx, 2); err != nil {
		t.Fatalf("MarkSyncError: %v", err)
	}

	pending, err = repo.GetPendingSyncBills(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncBills: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != 3 {
		t.Errorf("pending after marks = %+v, want only bill 3", pending)
	}

	// An update puts a synced bill back on the queue.
	b, err := repo.GetBill(ctx, 1)
	if err != nil {
		t.Fatalf("GetBill: %v", err)
	}
	if err := repo.UpdateBill(ctx, b); err != nil {
		t.Fatalf("UpdateBill: %v", err)
	}
	pending, err = repo.GetPendingSyncBills(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncBills: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("pending after update = %d, want 2", len(pending))
	}
}

func TestPendingSyncLimit(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		if err := repo.CreateBill(ctx, core.Bill{ID: i, Name: "bill", Frequency: core.Monthly, DueDay: 1}); err != nil {
			t.Fatalf("CreateBill %d: %v", i, err)
		}
	}
	pending, err := repo.GetPendingSyncBills(ctx, 2)
	if err != nil {
		t.Fatalf("GetPendingSyncBills: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("pending = %d, want limit of 2", len(pending))
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	settings, err := repo.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if len(settings) != 0 {
		t.Errorf("fresh settings = %v, want empty", settings)
	}
	if settings.Title() != core.DefaultTitle {
		t.Errorf("Title() = %q, want default %q", settings.Title(), core.DefaultTitle)
	}

	if err := repo.PutSettings(ctx, core.Settings{
		"title":         "Our Bills",
		"futurePeriods": "5",
		"customKey":     "kept",
	}); err != nil {
		t.Fatalf("PutSettings: %v", err)
	}

	// Upsert overwrites without touching other keys.
	if err := repo.PutSettings(ctx, core.Settings{"futurePeriods": "7"}); err != nil {
		t.Fatalf("PutSettings upsert: %v", err)
	}

	settings, err = repo.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if settings.Title() != "Our Bills" {
		t.Errorf("Title() = %q, want 'Our Bills'", settings.Title())
	}
	if settings.FuturePeriods() != 7 {
		t.Errorf("FuturePeriods() = %d, want 7", settings.FuturePeriods())
	}
	if settings["customKey"] != "kept" {
		t.Errorf("customKey = %q, want 'kept'", settings["customKey"])
	}
}
