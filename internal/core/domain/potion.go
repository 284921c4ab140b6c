package domain

import "time"

const DefaultPotionPrice = 30

// Potion is a catalog entry. Signature is unique across the catalog.
type Potion struct {
	ID        int64
	Signature Signature
	Name      string
	SKU       string
	Price     int
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeliveryItem is one line of a bottler delivery.
type DeliveryItem struct {
	Signature Signature
	Quantity  int
}

// BottlePlanEntry asks the bottler to produce Quantity bottles of Recipe.
type BottlePlanEntry struct {
	Recipe   Recipe
	Quantity int
}
