package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"onlineshop/internal/domain"
)

type memoryRepo struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

func NewMemory() Repository {
	return &memoryRepo{orders: make(map[string]domain.Order)}
}

func (r *memoryRepo) Create(_ context.Context, order domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now().UTC()
	}
	r.orders[order.ID] = order
	out := order
	return &out, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := o
	return &out, nil
}

func (r *memoryRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OrderDate.After(result[j].OrderDate) })
	return result, nil
}

func (r *memoryRepo) SetStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	r.orders[id] = o
	return nil
}
