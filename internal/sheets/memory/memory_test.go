package memory

import (
	"context"
	"testing"

	"billy/internal/core"
)

func TestStoreAppendAndRemove(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Append(ctx, core.Bill{ID: 1, Name: "Rent"})
	if err != nil || ref != "mem:1" {
		t.Fatalf("Append: ref=%q err=%v", ref, err)
	}
	if _, err := s.Append(ctx, core.Bill{ID: 2, Name: "Water"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if got := s.Bills(); len(got) != 2 || got[0].Name != "Rent" {
		t.Fatalf("Bills() = %+v", got)
	}

	if err := s.Remove(ctx, 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := s.Bills(); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("Bills() after remove = %+v", got)
	}

	// Removing a bill that was never exported is fine.
	if err := s.Remove(ctx, 404); err != nil {
		t.Errorf("Remove unknown = %v, want nil", err)
	}
}

func TestStoreAppendOverwrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.Append(ctx, core.Bill{ID: 1, Name: "Rent"})
	s.Append(ctx, core.Bill{ID: 1, Name: "Rent updated"})

	got := s.Bills()
	if len(got) != 1 {
		t.Fatalf("Bills() = %d rows, want 1 (same ID overwrites)", len(got))
	}
	if got[0].Name != "Rent updated" {
		t.Errorf("Name = %q", got[0].Name)
	}
}
