package domain

import "time"

// ProductVariant is a purchasable unit with its own price and stock count.
// Stock never goes negative; the repository enforces that with a conditional
// decrement.
type ProductVariant struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	Sales     int     `json:"sales"`
	UpdatedAt time.Time
}

// PricedItem pairs a catalog variant with the quantity and subtotal computed
// for a preview. It exists so previews never attach computed fields to the
// shared variant itself.
type PricedItem struct {
	Variant  ProductVariant `json:"variant"`
	Quantity int            `json:"quantity"`
	Subtotal float64        `json:"subtotal"`
}
