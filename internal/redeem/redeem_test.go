package redeem

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ecosortai/ecosort/internal/ledger"
)

type memStore struct {
	record ledger.Record
}

func (s *memStore) Load() (ledger.Record, error) { return s.record, nil }
func (s *memStore) Save(r ledger.Record) error   { s.record = r; return nil }

type fixedSource struct {
	total int
}

func (s *fixedSource) CreditTotal() int { return s.total }

func newFlow(t *testing.T, earned int, avatar string, vouchers []string) (*Flow, *ledger.Ledger) {
	t.Helper()

	if vouchers == nil {
		vouchers = []string{}
	}
	store := &memStore{record: ledger.Record{EarnedPoints: earned, Avatar: avatar, Vouchers: vouchers}}
	l, err := ledger.New(store, &fixedSource{total: earned}, time.Second)
	if err != nil {
		t.Fatalf("ledger.New() error = %v", err)
	}

	return NewFlow(l, DefaultCatalog(), DefaultCosts()), l
}

func TestCatalog_Lookup(t *testing.T) {
	catalog := DefaultCatalog()

	if len(catalog) != 4 {
		t.Fatalf("len(catalog) = %d, want 4", len(catalog))
	}

	theme, ok := catalog.Avatar("earth_guardian")
	if !ok {
		t.Fatal("earth_guardian should be in the catalog")
	}
	if theme.Name != "Earth Guardian" {
		t.Errorf("name = %q, want %q", theme.Name, "Earth Guardian")
	}
	if len(theme.Vouchers) != 3 {
		t.Errorf("len(vouchers) = %d, want 3", len(theme.Vouchers))
	}

	if _, ok := catalog.Avatar("fire_dancer"); ok {
		t.Error("unknown avatar should not resolve")
	}

	if !catalog.HasVoucher("Yoga Pass") {
		t.Error("Yoga Pass should be a known voucher")
	}
	if catalog.HasVoucher("Free Jetpack") {
		t.Error("Free Jetpack should not be a known voucher")
	}
}

func TestChangeAvatar_FirstSelectionIsFree(t *testing.T) {
	flow, l := newFlow(t, 0, "", nil)

	if err := flow.ChangeAvatar("water_spirit"); err != nil {
		t.Fatalf("ChangeAvatar() error = %v", err)
	}

	rec := l.Snapshot()
	if rec.Avatar != "water_spirit" {
		t.Errorf("avatar = %q, want water_spirit", rec.Avatar)
	}
	if rec.SpentPoints != 0 {
		t.Errorf("spent = %d, first selection should be free", rec.SpentPoints)
	}
}

func TestChangeAvatar_ChargesCost(t *testing.T) {
	flow, l := newFlow(t, 500, "water_spirit", nil)

	if err := flow.ChangeAvatar("metal_titan"); err != nil {
		t.Fatalf("ChangeAvatar() error = %v", err)
	}

	rec := l.Snapshot()
	if rec.Avatar != "metal_titan" {
		t.Errorf("avatar = %q, want metal_titan", rec.Avatar)
	}
	if rec.SpentPoints != DefaultAvatarChangeCost {
		t.Errorf("spent = %d, want %d", rec.SpentPoints, DefaultAvatarChangeCost)
	}
}

func TestChangeAvatar_SameAvatarIsNoCharge(t *testing.T) {
	flow, l := newFlow(t, 500, "water_spirit", nil)

	err := flow.ChangeAvatar("water_spirit")
	if !errors.Is(err, ErrSameAvatar) {
		t.Fatalf("ChangeAvatar() error = %v, want ErrSameAvatar", err)
	}
	if l.Snapshot().SpentPoints != 0 {
		t.Error("same-avatar selection must not charge points")
	}
}

func TestChangeAvatar_InsufficientBalance(t *testing.T) {
	flow, l := newFlow(t, 199, "water_spirit", nil)

	err := flow.ChangeAvatar("balance_seeker")
	if !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("ChangeAvatar() error = %v, want ErrInsufficientBalance", err)
	}

	rec := l.Snapshot()
	if rec.Avatar != "water_spirit" || rec.SpentPoints != 0 {
		t.Errorf("record mutated by failed change: %+v", rec)
	}
}

func TestChangeAvatar_UnknownAvatar(t *testing.T) {
	flow, _ := newFlow(t, 1000, "water_spirit", nil)

	if err := flow.ChangeAvatar("fire_dancer"); !errors.Is(err, ErrUnknownAvatar) {
		t.Errorf("ChangeAvatar() error = %v, want ErrUnknownAvatar", err)
	}
}

func TestRedeemVoucher_Success(t *testing.T) {
	flow, l := newFlow(t, 1000, "water_spirit", nil)

	code, err := flow.RedeemVoucher("Free Bubble Tea")
	if err != nil {
		t.Fatalf("RedeemVoucher() error = %v", err)
	}

	if !strings.HasPrefix(code, "VCHR-") {
		t.Errorf("code = %q, want VCHR- prefix", code)
	}
	if len(code) != len("VCHR-")+6 {
		t.Errorf("code = %q, want 6 digits after the prefix", code)
	}

	rec := l.Snapshot()
	if rec.SpentPoints != DefaultVoucherCost {
		t.Errorf("spent = %d, want %d", rec.SpentPoints, DefaultVoucherCost)
	}
	if !rec.HasVoucher("Free Bubble Tea") {
		t.Error("voucher should be recorded as redeemed")
	}
	if rec.Available() != 0 {
		t.Errorf("available = %d, want 0", rec.Available())
	}
}

func TestRedeemVoucher_SecondRedemptionChargesOnce(t *testing.T) {
	flow, l := newFlow(t, 5000, "water_spirit", nil)

	if _, err := flow.RedeemVoucher("Iced Coconut"); err != nil {
		t.Fatalf("first RedeemVoucher() error = %v", err)
	}

	_, err := flow.RedeemVoucher("Iced Coconut")
	if !errors.Is(err, ErrAlreadyRedeemed) {
		t.Fatalf("second RedeemVoucher() error = %v, want ErrAlreadyRedeemed", err)
	}

	rec := l.Snapshot()
	if rec.SpentPoints != DefaultVoucherCost {
		t.Errorf("spent = %d, want exactly one charge of %d", rec.SpentPoints, DefaultVoucherCost)
	}
	if len(rec.Vouchers) != 1 {
		t.Errorf("vouchers = %v, want a single entry", rec.Vouchers)
	}
}

func TestRedeemVoucher_InsufficientBalance(t *testing.T) {
	flow, l := newFlow(t, 999, "water_spirit", nil)

	_, err := flow.RedeemVoucher("Hydration Bottle")
	if !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("RedeemVoucher() error = %v, want ErrInsufficientBalance", err)
	}

	rec := l.Snapshot()
	if rec.SpentPoints != 0 || len(rec.Vouchers) != 0 {
		t.Errorf("record mutated by failed redemption: %+v", rec)
	}
}

func TestRedeemVoucher_UnknownVoucher(t *testing.T) {
	flow, _ := newFlow(t, 5000, "water_spirit", nil)

	if _, err := flow.RedeemVoucher("Free Jetpack"); !errors.Is(err, ErrUnknownVoucher) {
		t.Errorf("RedeemVoucher() error = %v, want ErrUnknownVoucher", err)
	}
}

func TestRedeemVoucher_EmptyHistoryAlwaysFails(t *testing.T) {
	flow, _ := newFlow(t, 0, "", nil)

	if _, err := flow.RedeemVoucher("Compost Bag"); !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Errorf("RedeemVoucher() error = %v, want ErrInsufficientBalance", err)
	}
	if err := flow.ChangeAvatar("water_spirit"); err != nil {
		// First avatar pick is free even with zero balance.
		t.Errorf("first ChangeAvatar() error = %v", err)
	}
}

func TestNewCode_Format(t *testing.T) {
	flow, _ := newFlow(t, 0, "", nil)
	flow.randInt = func(n int) int { return 0 }

	if code := flow.newCode(); code != "VCHR-100000" {
		t.Errorf("code = %q, want VCHR-100000", code)
	}

	flow.randInt = func(n int) int { return n - 1 }
	if code := flow.newCode(); code != "VCHR-999999" {
		t.Errorf("code = %q, want VCHR-999999", code)
	}
}
