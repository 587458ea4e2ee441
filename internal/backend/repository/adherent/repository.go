package adherent

import (
	"context"

	"storefront-engine/internal/domain"
)

// Repository persists and fetches directory members.
type Repository interface {
	Create(ctx context.Context, u domain.UserRecord) (*domain.UserRecord, error)
	GetByEmail(ctx context.Context, email string) (*domain.UserRecord, error)
	GetByID(ctx context.Context, id int) (*domain.UserRecord, error)
	List(ctx context.Context) ([]domain.UserRecord, error)
}
