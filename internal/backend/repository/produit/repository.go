package produit

import (
	"context"

	"storefront-engine/internal/domain"
)

// Repository persists and fetches catalog products.
type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int) (*domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
