package tracker

import (
	"fmt"
	"strings"
)

// Material is one of the four recyclable material classes the model is
// trained on.
type Material string

const (
	Cardboard Material = "Cardboard"
	Metal     Material = "Metal"
	Paper     Material = "Paper"
	Plastic   Material = "Plastic"
)

// Materials lists all known materials in display order.
func Materials() []Material {
	return []Material{Cardboard, Metal, Paper, Plastic}
}

// ParseMaterial normalizes a classifier label ("plastic", "PLASTIC") to a
// Material. Returns an error for labels outside the known set.
func ParseMaterial(label string) (Material, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "cardboard":
		return Cardboard, nil
	case "metal":
		return Metal, nil
	case "paper":
		return Paper, nil
	case "plastic":
		return Plastic, nil
	}
	return "", fmt.Errorf("unknown material label %q", label)
}

// CreditTable maps a material to the credits earned per detection.
type CreditTable map[Material]int

// DefaultCredits returns the standard kiosk credit values.
func DefaultCredits() CreditTable {
	return CreditTable{
		Cardboard: 7,
		Metal:     10,
		Paper:     5,
		Plastic:   6,
	}
}
