package store

import (
	"testing"

	"github.com/ecosortai/ecosort/internal/ledger"
)

func TestLedgerRepository_LoadDefaults(t *testing.T) {
	s := newTestStore(t)

	record, err := s.Ledger().Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if record.EarnedPoints != 0 || record.SpentPoints != 0 || record.Avatar != "" {
		t.Errorf("record = %+v, want defaults", record)
	}
	if record.Vouchers == nil || len(record.Vouchers) != 0 {
		t.Errorf("vouchers = %v, want empty list", record.Vouchers)
	}
}

func TestLedgerRepository_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	repo := s.Ledger()

	want := ledger.Record{
		EarnedPoints: 2300,
		SpentPoints:  1200,
		Avatar:       "balance_seeker",
		Vouchers:     []string{"Rainbow Pouch", "Yoga Pass"},
	}

	if err := repo.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got.EarnedPoints != want.EarnedPoints || got.SpentPoints != want.SpentPoints || got.Avatar != want.Avatar {
		t.Errorf("record = %+v, want %+v", got, want)
	}
	if len(got.Vouchers) != 2 || got.Vouchers[0] != "Rainbow Pouch" || got.Vouchers[1] != "Yoga Pass" {
		t.Errorf("vouchers = %v, want insertion order preserved", got.Vouchers)
	}
}

func TestLedgerRepository_SaveReplacesVouchers(t *testing.T) {
	s := newTestStore(t)
	repo := s.Ledger()

	first := ledger.Record{EarnedPoints: 1000, Vouchers: []string{"Compost Bag"}}
	if err := repo.Save(first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second := ledger.Record{EarnedPoints: 1000, SpentPoints: 1000, Vouchers: []string{"Compost Bag", "Eco Fertilizer"}}
	if err := repo.Save(second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Vouchers) != 2 {
		t.Errorf("vouchers = %v, want 2 entries", got.Vouchers)
	}
	if got.SpentPoints != 1000 {
		t.Errorf("spent = %d, want 1000", got.SpentPoints)
	}
}

func TestLedgerRepository_WorksAsLedgerStore(t *testing.T) {
	s := newTestStore(t)

	// The repository satisfies the ledger.Store contract used by the
	// point ledger.
	var storeIface ledger.Store = s.Ledger()

	record := ledger.Record{EarnedPoints: 500, Vouchers: []string{}}
	if err := storeIface.Save(record); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := storeIface.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.EarnedPoints != 500 {
		t.Errorf("earned = %d, want 500", got.EarnedPoints)
	}
}
