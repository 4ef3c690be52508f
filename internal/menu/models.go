package menu

import "github.com/shopspring/decimal"

// The menu endpoints serialize with capitalized keys; the tags mirror
// the wire format rather than Go convention.

// Product is one drink on the menu. Price is the size L base price in
// VND; size and topping adjustments are applied at composition time.
type Product struct {
	ID         int64           `json:"Id"`
	Name       string          `json:"Name"`
	Price      decimal.Decimal `json:"Price"`
	Image      string          `json:"Image"`
	CategoryID int64           `json:"CategoryId"`
}

// Topping is an add-on with its own surcharge.
type Topping struct {
	ID    int64           `json:"Id"`
	Name  string          `json:"Name"`
	Price decimal.Decimal `json:"Price"`
}

// Category groups products for the menu view.
type Category struct {
	ID   int64  `json:"Id"`
	Name string `json:"Name"`
}
