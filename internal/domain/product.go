package domain

// Product is the canonical catalog record. Wire payloads arrive under two
// naming conventions and are normalized into this shape at the boundary.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Image       string  `json:"image,omitempty"`
	CategoryID  int     `json:"categoryId,omitempty"`
}
