package redeem

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/ecosortai/ecosort/internal/ledger"
)

// Default redemption costs for the kiosk deployment.
const (
	DefaultAvatarChangeCost = 200
	DefaultVoucherCost      = 1000
)

var (
	// ErrSameAvatar is returned when the target avatar equals the
	// current one. No points are charged.
	ErrSameAvatar = errors.New("avatar is already selected")

	// ErrAlreadyRedeemed is returned when the voucher was redeemed
	// before. No points are charged.
	ErrAlreadyRedeemed = errors.New("voucher already redeemed")

	// ErrUnknownAvatar is returned for avatar IDs outside the catalog.
	ErrUnknownAvatar = errors.New("unknown avatar")

	// ErrUnknownVoucher is returned for voucher IDs outside the catalog.
	ErrUnknownVoucher = errors.New("unknown voucher")
)

// Costs holds the point prices for the two redemption operations.
type Costs struct {
	AvatarChange int
	Voucher      int
}

// DefaultCosts returns the kiosk deployment's prices.
func DefaultCosts() Costs {
	return Costs{
		AvatarChange: DefaultAvatarChangeCost,
		Voucher:      DefaultVoucherCost,
	}
}

// Flow performs avatar changes and voucher redemptions against the
// ledger. Every charge routes through a single atomic ledger update:
// either the points are spent and the record field changes, or nothing
// is persisted.
type Flow struct {
	ledger  *ledger.Ledger
	catalog Catalog
	costs   Costs
	randInt func(n int) int
}

// NewFlow creates a Flow over the given ledger and catalog.
func NewFlow(l *ledger.Ledger, catalog Catalog, costs Costs) *Flow {
	if costs.AvatarChange <= 0 {
		costs.AvatarChange = DefaultAvatarChangeCost
	}
	if costs.Voucher <= 0 {
		costs.Voucher = DefaultVoucherCost
	}

	return &Flow{
		ledger:  l,
		catalog: catalog,
		costs:   costs,
		randInt: rand.Intn,
	}
}

// Catalog returns the static avatar/voucher catalog.
func (f *Flow) Catalog() Catalog {
	return f.catalog
}

// Costs returns the configured redemption prices.
func (f *Flow) Costs() Costs {
	return f.costs
}

// ChangeAvatar switches the user to the given avatar, charging the
// configured cost. The first selection (no current avatar) is free.
// Selecting the current avatar is a no-charge ErrSameAvatar.
func (f *Flow) ChangeAvatar(id string) error {
	if _, ok := f.catalog.Avatar(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAvatar, id)
	}

	return f.ledger.Update(func(r *ledger.Record) error {
		if r.Avatar == id {
			return ErrSameAvatar
		}

		// First-time selection is free.
		if r.Avatar != "" {
			if r.Available() < f.costs.AvatarChange {
				return ledger.ErrInsufficientBalance
			}
			r.SpentPoints += f.costs.AvatarChange
		}
		r.Avatar = id

		return nil
	})
}

// RedeemVoucher exchanges points for the voucher and returns a
// human-readable redemption code. Redeeming an already-held voucher is
// a no-charge ErrAlreadyRedeemed. The code is a 6-digit random draw:
// not cryptographic and not guaranteed unique, which is acceptable for
// counter display at this scale.
func (f *Flow) RedeemVoucher(id string) (string, error) {
	if !f.catalog.HasVoucher(id) {
		return "", fmt.Errorf("%w: %q", ErrUnknownVoucher, id)
	}

	err := f.ledger.Update(func(r *ledger.Record) error {
		if r.HasVoucher(id) {
			return ErrAlreadyRedeemed
		}
		if r.Available() < f.costs.Voucher {
			return ledger.ErrInsufficientBalance
		}

		r.SpentPoints += f.costs.Voucher
		r.Vouchers = append(r.Vouchers, id)
		return nil
	})
	if err != nil {
		return "", err
	}

	return f.newCode(), nil
}

// newCode generates a redemption code of the form VCHR-123456.
func (f *Flow) newCode() string {
	return fmt.Sprintf("VCHR-%06d", 100000+f.randInt(900000))
}
