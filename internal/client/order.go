package client

import (
	"context"
	"fmt"
	"net/http"

	"storefront-engine/internal/domain"
	"storefront-engine/internal/wire"
)

// OrderClient wraps the remote order ledger.
type OrderClient struct {
	c *Client
}

func NewOrders(c *Client) *OrderClient { return &OrderClient{c: c} }

// Create submits an order draft. requestID, when set, is forwarded so the
// ledger can deduplicate a retried submission.
func (o *OrderClient) Create(ctx context.Context, draft domain.Order, requestID string) (*domain.Order, error) {
	var headers map[string]string
	if requestID != "" {
		headers = map[string]string{"X-Request-Id": requestID}
	}
	var rec wire.OrderRecord
	if err := o.c.do(ctx, http.MethodPost, "/api/commandes", headers, wire.OrderPayload(draft), &rec); err != nil {
		return nil, err
	}
	created := wire.Order(rec)
	return &created, nil
}

// ListByCustomer returns the customer's orders, newest first as the ledger
// reports them.
func (o *OrderClient) ListByCustomer(ctx context.Context, customerID int) ([]domain.Order, error) {
	var recs []wire.OrderRecord
	path := fmt.Sprintf("/api/commandes/user/%d", customerID)
	if err := o.c.do(ctx, http.MethodGet, path, nil, nil, &recs); err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(recs))
	for _, r := range recs {
		orders = append(orders, wire.Order(r))
	}
	return orders, nil
}
