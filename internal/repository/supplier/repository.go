package supplier

import (
	"context"

	"onlineshop/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Supplier, error)
	Create(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error)
}
