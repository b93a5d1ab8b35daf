// Package memory is an in-memory BillExporter used in tests and when no
// spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"billy/internal/core"
	ports "billy/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	rows  map[int64]core.Bill
	order []int64
}

var _ ports.BillExporter = (*Store)(nil)

func New() *Store {
	return &Store{rows: make(map[int64]core.Bill)}
}

// Append stores the snapshot and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, b core.Bill) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rows[b.ID]; !exists {
		s.order = append(s.order, b.ID)
	}
	s.rows[b.ID] = b
	return fmt.Sprintf("mem:%d", b.ID), nil
}

func (s *Store) Remove(_ context.Context, billID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rows[billID]; !exists {
		return nil
	}
	delete(s.rows, billID)
	for i, id := range s.order {
		if id == billID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Bills returns the stored snapshots in append order.
func (s *Store) Bills() []core.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Bill, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rows[id])
	}
	return out
}
