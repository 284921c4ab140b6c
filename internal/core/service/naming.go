package service

import (
	"math/rand/v2"
	"strings"
)

var (
	nameAdjectives = []string{"Magic", "Ancient", "Mystic", "Rare", "Invisible", "Fiery", "Icy", "Glowing", "Dark", "Shimmering"}
	nameNouns      = []string{"Elixir", "Potion", "Brew", "Serum", "Tonic", "Mixture", "Drink", "Concoction", "Blend", "Solution"}
	// blanks keep roughly half the names short
	nameExtras = []string{"of Power", "of Stealth", "of Healing", "of Energy", "of Luck", "", "", "", "", ""}
)

// GeneratePotionName returns a random display name such as "Fiery Tonic of Luck".
func GeneratePotionName() string {
	name := nameAdjectives[rand.IntN(len(nameAdjectives))] + " " +
		nameNouns[rand.IntN(len(nameNouns))] + " " +
		nameExtras[rand.IntN(len(nameExtras))]
	return strings.TrimSpace(name)
}

// GenerateSKU derives a SKU from a display name.
func GenerateSKU(name string) string {
	return strings.ReplaceAll(strings.ToUpper(name), " ", "_")
}
