package supplier

import (
	"context"
	"sync"
	"time"

	"onlineshop/internal/domain"
)

type memoryRepo struct {
	mu        sync.RWMutex
	suppliers []domain.Supplier
}

func NewMemory() Repository {
	return &memoryRepo{}
}

func (r *memoryRepo) List(_ context.Context) ([]domain.Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Supplier, len(r.suppliers))
	copy(out, r.suppliers)
	return out, nil
}

func (r *memoryRepo) Create(_ context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.suppliers {
		if existing.Name == supplier.Name {
			return nil, domain.ErrAlreadyExists
		}
	}
	if supplier.CreatedAt.IsZero() {
		supplier.CreatedAt = time.Now().UTC()
	}
	r.suppliers = append(r.suppliers, supplier)
	out := supplier
	return &out, nil
}
