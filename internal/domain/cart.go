package domain

// Variant distinguishes cart lines for the same product. Both fields are
// optional; an empty variant is a valid identity component.
type Variant struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
}

// CartItem is one cart line. Quantity is always >= 1; a quantity reaching
// zero removes the line instead of storing it.
type CartItem struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
	Variant   Variant `json:"variant"`
}

// Identity is the (product, color, size) tuple that uniquely identifies a
// cart line. The cart never holds two items with the same identity.
type Identity struct {
	ProductID int
	Color     string
	Size      string
}

// Identity returns the line's identity tuple.
func (i CartItem) Identity() Identity {
	return Identity{ProductID: i.ProductID, Color: i.Variant.Color, Size: i.Variant.Size}
}

// CartSummary is fully derived from the item list plus the volatile promo
// discount; it is never mutated independently.
type CartSummary struct {
	TotalItems int     `json:"totalItems"`
	Subtotal   float64 `json:"subtotal"`
	Shipping   float64 `json:"shipping"`
	Tax        float64 `json:"tax"`
	Discount   float64 `json:"discount"`
	Total      float64 `json:"total"`
}

const (
	freeShippingThreshold = 100.0
	flatShippingFee       = 9.99
	taxRate               = 0.08
)

// Summarize derives the pricing summary for items with the given promo
// discount applied. Shipping is free strictly above the threshold.
func Summarize(items []CartItem, discount float64) CartSummary {
	var subtotal float64
	var count int
	for _, it := range items {
		subtotal += it.Price * float64(it.Quantity)
		count += it.Quantity
	}
	shipping := flatShippingFee
	if subtotal > freeShippingThreshold {
		shipping = 0
	}
	tax := subtotal * taxRate
	return CartSummary{
		TotalItems: count,
		Subtotal:   subtotal,
		Shipping:   shipping,
		Tax:        tax,
		Discount:   discount,
		Total:      subtotal + shipping + tax - discount,
	}
}
