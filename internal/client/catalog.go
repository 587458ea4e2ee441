package client

import (
	"context"
	"fmt"
	"net/http"

	"storefront-engine/internal/domain"
	"storefront-engine/internal/wire"
)

// CatalogClient wraps the remote product catalog.
type CatalogClient struct {
	c *Client
}

func NewCatalog(c *Client) *CatalogClient { return &CatalogClient{c: c} }

// ListAll returns every catalog product, normalized.
func (c *CatalogClient) ListAll(ctx context.Context) ([]domain.Product, error) {
	var recs []wire.ProductRecord
	if err := c.c.do(ctx, http.MethodGet, "/api/produits", nil, nil, &recs); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(recs))
	for _, r := range recs {
		products = append(products, wire.Product(r))
	}
	return products, nil
}

// GetByID returns one product; a deleted product surfaces as NotFound.
func (c *CatalogClient) GetByID(ctx context.Context, id int) (*domain.Product, error) {
	var rec wire.ProductRecord
	if err := c.c.do(ctx, http.MethodGet, fmt.Sprintf("/api/produits/%d", id), nil, nil, &rec); err != nil {
		return nil, err
	}
	p := wire.Product(rec)
	return &p, nil
}
