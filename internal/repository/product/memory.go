package product

import (
	"context"
	"sync"
	"time"

	"onlineshop/internal/domain"
)

type memoryRepo struct {
	mu       sync.RWMutex
	products []domain.Product
}

func NewMemory() Repository {
	return &memoryRepo{}
}

func (r *memoryRepo) List(_ context.Context, page, size int) ([]domain.Product, int, error) {
	if size <= 0 {
		size = 10
	}
	if page < 0 {
		page = 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.products)
	start := page * size
	if start >= total {
		return nil, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	out := make([]domain.Product, end-start)
	copy(out, r.products[start:end])
	return out, total, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.ID == id {
			out := p
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) Create(_ context.Context, product domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	r.products = append(r.products, product)
	out := product
	return &out, nil
}

func (r *memoryRepo) Update(_ context.Context, product domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.products {
		if r.products[i].ID == product.ID {
			product.CreatedAt = r.products[i].CreatedAt
			r.products[i] = product
			out := product
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.products {
		if r.products[i].ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}
