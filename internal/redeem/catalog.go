// Package redeem exchanges earned points for avatars and themed vouchers.
package redeem

// AvatarTheme describes one selectable avatar and its themed rewards.
type AvatarTheme struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Color    string   `json:"color"`
	Vouchers []string `json:"vouchers"`
}

// Catalog is the static avatar/voucher configuration. It is never
// mutated at runtime.
type Catalog []AvatarTheme

// DefaultCatalog returns the kiosk's built-in avatar themes.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			ID:       "water_spirit",
			Name:     "Water Spirit",
			Color:    "#0077cc",
			Vouchers: []string{"Free Bubble Tea", "Hydration Bottle", "Iced Coconut"},
		},
		{
			ID:       "metal_titan",
			Name:     "Metal Titan",
			Color:    "#555555",
			Vouchers: []string{"Tool Kit Discount", "Screwdriver Set", "Gadget Wipes"},
		},
		{
			ID:       "earth_guardian",
			Name:     "Earth Guardian",
			Color:    "#228B22",
			Vouchers: []string{"Plant Starter Kit", "Compost Bag", "Eco Fertilizer"},
		},
		{
			ID:       "balance_seeker",
			Name:     "Balance Seeker",
			Color:    "#9932CC",
			Vouchers: []string{"Rainbow Pouch", "Yoga Pass", "Mood Candle"},
		},
	}
}

// Avatar returns the theme with the given ID, or false if unknown.
func (c Catalog) Avatar(id string) (AvatarTheme, bool) {
	for _, theme := range c {
		if theme.ID == id {
			return theme, true
		}
	}
	return AvatarTheme{}, false
}

// HasVoucher reports whether any theme in the catalog offers the voucher.
func (c Catalog) HasVoucher(id string) bool {
	for _, theme := range c {
		for _, v := range theme.Vouchers {
			if v == id {
				return true
			}
		}
	}
	return false
}
