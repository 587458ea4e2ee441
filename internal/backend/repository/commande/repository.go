package commande

import (
	"context"

	"storefront-engine/internal/domain"
)

// Repository persists and fetches orders with their line item ids.
type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByAdherent(ctx context.Context, adherentID int) ([]domain.Order, error)
}
