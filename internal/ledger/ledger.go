// Package ledger derives and spends the kiosk's point balance.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultCooldown is the minimum interval between recomputations of
// earned points from the detection history.
const DefaultCooldown = 5 * time.Second

// ErrInsufficientBalance is returned when a spend exceeds the available
// balance. The ledger is left unchanged.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Record is the persisted ledger state for the kiosk's single user.
type Record struct {
	EarnedPoints int      `json:"earned_points"`
	SpentPoints  int      `json:"spent_points"`
	Avatar       string   `json:"avatar"`
	Vouchers     []string `json:"vouchers"`
}

// DefaultRecord returns the record used when no persisted state exists.
func DefaultRecord() Record {
	return Record{Vouchers: []string{}}
}

// Available returns the spendable balance.
func (r Record) Available() int {
	return r.EarnedPoints - r.SpentPoints
}

// HasVoucher reports whether the voucher has already been redeemed.
func (r Record) HasVoucher(id string) bool {
	for _, v := range r.Vouchers {
		if v == id {
			return true
		}
	}
	return false
}

// clone returns a deep copy so callers never alias the ledger's state.
func (r Record) clone() Record {
	out := r
	out.Vouchers = make([]string, len(r.Vouchers))
	copy(out.Vouchers, r.Vouchers)
	return out
}

// Store is the durable backend for the ledger record. Implementations
// must write the record atomically: a failed Save leaves the previous
// record intact.
type Store interface {
	Load() (Record, error)
	Save(Record) error
}

// CreditSource supplies the current credit total of the detection history.
type CreditSource interface {
	CreditTotal() int
}

// Ledger tracks earned and spent points for the kiosk user. Earned
// points are a full recomputation over the detection history, gated by a
// cooldown so the store is not rewritten on every frame.
type Ledger struct {
	mu            sync.Mutex
	store         Store
	source        CreditSource
	record        Record
	cooldown      time.Duration
	lastRecompute time.Time
	now           func() time.Time
}

// New creates a Ledger backed by the given store and credit source and
// loads the persisted record. A load failure falls back to the default
// record; the caller decides whether to warn.
func New(store Store, source CreditSource, cooldown time.Duration) (*Ledger, error) {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}

	l := &Ledger{
		store:    store,
		source:   source,
		cooldown: cooldown,
		now:      time.Now,
	}

	record, err := store.Load()
	if err != nil {
		l.record = DefaultRecord()
		return l, fmt.Errorf("load ledger: %w", err)
	}
	if record.Vouchers == nil {
		record.Vouchers = []string{}
	}
	l.record = record

	return l, nil
}

// Recompute re-derives earned points from the credit source if the
// cooldown has elapsed, persisting only when the total changed. Reads
// between recomputations use the last computed value. Returns the
// current earned total.
func (l *Ledger) Recompute() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.lastRecompute.IsZero() && l.now().Sub(l.lastRecompute) < l.cooldown {
		return l.record.EarnedPoints, nil
	}
	l.lastRecompute = l.now()

	earned := l.source.CreditTotal()
	if earned == l.record.EarnedPoints {
		return earned, nil
	}

	updated := l.record.clone()
	updated.EarnedPoints = earned
	if err := l.store.Save(updated); err != nil {
		return l.record.EarnedPoints, fmt.Errorf("persist ledger: %w", err)
	}
	l.record = updated

	return earned, nil
}

// Spend deducts amount from the available balance and persists the
// change. Returns the new available balance, or ErrInsufficientBalance
// with the ledger unchanged when the balance does not cover the amount.
func (l *Ledger) Spend(amount int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount < 0 {
		return l.record.Available(), fmt.Errorf("negative spend amount %d", amount)
	}
	if l.record.Available() < amount {
		return l.record.Available(), ErrInsufficientBalance
	}

	updated := l.record.clone()
	updated.SpentPoints += amount
	if err := l.store.Save(updated); err != nil {
		return l.record.Available(), fmt.Errorf("persist ledger: %w", err)
	}
	l.record = updated

	return l.record.Available(), nil
}

// Update applies fn to a copy of the record and persists the result.
// The update is discarded if fn returns an error or the save fails.
// This is the mutation path for avatar changes and voucher redemption.
func (l *Ledger) Update(fn func(*Record) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	updated := l.record.clone()
	if err := fn(&updated); err != nil {
		return err
	}
	if updated.Available() < 0 {
		return ErrInsufficientBalance
	}
	if err := l.store.Save(updated); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	l.record = updated

	return nil
}

// Snapshot returns a copy of the current record.
func (l *Ledger) Snapshot() Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.record.clone()
}

// Available returns the spendable balance from the last computed state.
func (l *Ledger) Available() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.record.Available()
}

// Reset restores the default record and persists it. Used by the
// operator reset command.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	record := DefaultRecord()
	if err := l.store.Save(record); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	l.record = record
	l.lastRecompute = time.Time{}

	return nil
}
