package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"billy/internal/amqp"
	"billy/internal/core"
	"billy/internal/schedule"
	"billy/internal/storage"
)

// BillService orchestrates bill operations across SQLite, the AMQP change
// feed and the schedule engine. The AMQP client is optional; without it the
// export worker's periodic sweep still picks up pending rows.
type BillService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	calendar   schedule.Calendar
	now        func() time.Time
}

func NewBillService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *BillService {
	return &BillService{
		storage:    storage,
		amqpClient: amqpClient,
		calendar:   schedule.DefaultCalendar(),
		now:        time.Now,
	}
}

func (s *BillService) Calendar() schedule.Calendar {
	return s.calendar
}

// ListBills returns every bill template.
func (s *BillService) ListBills(ctx context.Context) ([]core.Bill, error) {
	bills, err := s.storage.ListBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return bills, nil
}

func (s *BillService) GetBill(ctx context.Context, id int64) (core.Bill, error) {
	return s.storage.GetBill(ctx, id)
}

// CreateBill validates and saves a new bill. IDs are creation timestamps in
// milliseconds, so they are unique per insert and never reused after delete.
func (s *BillService) CreateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	b = b.Normalize()
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	if b.ID == 0 {
		b.ID = s.now().UnixMilli()
	}

	if err := s.storage.CreateBill(ctx, b); err != nil {
		return core.Bill{}, fmt.Errorf("save bill: %w", err)
	}
	s.publishSync(ctx, b.ID, 1)
	return b, nil
}

// CreateBills saves a batch, stopping at the first invalid entry. Used by
// the bulk import path, which posts an array of bills.
func (s *BillService) CreateBills(ctx context.Context, bills []core.Bill) ([]core.Bill, error) {
	// One timestamp plus the batch offset keeps IDs unique within the
	// loop, where UnixMilli alone would collide.
	base := s.now().UnixMilli()
	created := make([]core.Bill, 0, len(bills))
	for i, b := range bills {
		if b.ID == 0 {
			b.ID = base + int64(i)
		}
		saved, err := s.CreateBill(ctx, b)
		if err != nil {
			return created, fmt.Errorf("bill %d: %w", i, err)
		}
		created = append(created, saved)
	}
	return created, nil
}

// UpdateBill overwrites a bill's template fields. The stored payment
// history is preserved unless the update explicitly carries its own.
func (s *BillService) UpdateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	existing, err := s.storage.GetBill(ctx, b.ID)
	if err != nil {
		return core.Bill{}, err
	}
	if b.PaymentHistory == nil {
		b.PaymentHistory = existing.PaymentHistory
	}

	b = b.Normalize()
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	if err := s.storage.UpdateBill(ctx, b); err != nil {
		return core.Bill{}, fmt.Errorf("update bill: %w", err)
	}
	s.publishLatest(ctx, b.ID)
	return b, nil
}

func (s *BillService) DeleteBill(ctx context.Context, id int64) error {
	if err := s.storage.DeleteBill(ctx, id); err != nil {
		return err
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.PublishBillDelete(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete message", "id", id, "error", err)
		}
	}
	return nil
}

// TogglePayment flips the paid flag for one occurrence, identified by its
// pay-period index and due date. The date must be the one shown to the
// user, after any banking-day adjustment, so both sides agree on the key.
func (s *BillService) TogglePayment(ctx context.Context, billID int64, periodIndex int, date time.Time) (core.Bill, error) {
	bill, err := s.storage.GetBill(ctx, billID)
	if err != nil {
		return core.Bill{}, err
	}

	key := schedule.PaymentKey(periodIndex, date)
	bill = bill.WithPayment(key, !bill.Paid(key))

	if err := s.storage.UpdateBill(ctx, bill); err != nil {
		return core.Bill{}, fmt.Errorf("toggle payment: %w", err)
	}

	slog.InfoContext(ctx, "Payment toggled",
		"bill_id", billID,
		"payment_key", key,
		"paid", bill.Paid(key))

	s.publishLatest(ctx, billID)
	return bill, nil
}

// PayPeriods aggregates all bills over the requested period window.
func (s *BillService) PayPeriods(ctx context.Context, opts schedule.PeriodOptions) ([]schedule.PayPeriod, error) {
	return s.PayPeriodsAt(ctx, s.now(), opts)
}

// PayPeriodsAt is PayPeriods anchored to an explicit instant, so a caller
// that keys a cache on the current period can use the same clock reading
// for the lookup and the build.
func (s *BillService) PayPeriodsAt(ctx context.Context, now time.Time, opts schedule.PeriodOptions) ([]schedule.PayPeriod, error) {
	bills, err := s.ListBills(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.BuildPeriods(s.calendar, bills, now, opts), nil
}

// ActivePeriod builds the outstanding/completed view for one period.
func (s *BillService) ActivePeriod(ctx context.Context, index int, opts schedule.ActiveOptions) (schedule.ActiveView, error) {
	bills, err := s.ListBills(ctx)
	if err != nil {
		return schedule.ActiveView{}, err
	}
	start, end := s.calendar.Bounds(index)
	return schedule.ActiveOccurrences(s.calendar, bills, start, end, opts), nil
}

func (s *BillService) GetSettings(ctx context.Context) (core.Settings, error) {
	return s.storage.GetSettings(ctx)
}

func (s *BillService) PutSettings(ctx context.Context, settings core.Settings) error {
	return s.storage.PutSettings(ctx, settings)
}

func (s *BillService) publishSync(ctx context.Context, id, version int64) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishBillSync(ctx, id, version); err != nil {
		// The bill is saved locally; the periodic sweep will retry.
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}
}

func (s *BillService) publishLatest(ctx context.Context, id int64) {
	if s.amqpClient == nil {
		return
	}
	version, err := s.storage.GetBillVersion(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read bill version for sync", "id", id, "error", err)
		return
	}
	s.publishSync(ctx, id, version)
}

// Close closes both storage and AMQP connections.
func (s *BillService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close bill service: %v", errs)
	}
	return nil
}
