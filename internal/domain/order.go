package domain

import "time"

// Order lifecycle statuses. The backend stores these verbatim; new orders
// always start as StatusPending.
const (
	StatusPending   = "EN_COURS"
	StatusShipped   = "EXPEDIE"
	StatusDelivered = "LIVRE"
	StatusCancelled = "ANNULE"
)

// Order is the canonical order record. Drafts have ID zero; the order
// ledger assigns the id and echoes the record back.
type Order struct {
	ID          int       `json:"id,omitempty"`
	CustomerID  int       `json:"customerId"`
	TotalAmount float64   `json:"totalAmount"`
	Status      string    `json:"status"`
	OrderDate   time.Time `json:"orderDate"`
	LineItemIDs []int     `json:"lineItemIds"`
}

// NewOrderDraft builds the order-creation request from a resolved customer,
// the derived cart total, and the cart lines. One line item id per product
// reference, in cart order.
func NewOrderDraft(customerID int, total float64, items []CartItem, now time.Time) Order {
	ids := make([]int, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return Order{
		CustomerID:  customerID,
		TotalAmount: total,
		Status:      StatusPending,
		OrderDate:   now.UTC(),
		LineItemIDs: ids,
	}
}
