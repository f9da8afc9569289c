package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"onlineshop/internal/domain"
)

// SupplierInput is the add-supplier payload.
type SupplierInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// Suppliers lists registered suppliers.
func (c *Client) Suppliers(ctx context.Context) ([]domain.Supplier, error) {
	env, err := c.do(ctx, http.MethodGet, "/suppliers", nil, true, "Fetch suppliers failed")
	if err != nil {
		return nil, err
	}
	var suppliers []domain.Supplier
	if err := json.Unmarshal(env.Data, &suppliers); err != nil {
		return nil, fmt.Errorf("decode suppliers: %w", err)
	}
	return suppliers, nil
}

// AddSupplier registers a supplier.
func (c *Client) AddSupplier(ctx context.Context, in SupplierInput) (*domain.Supplier, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("validate supplier form: %w", err)
	}
	env, err := c.do(ctx, http.MethodPost, "/suppliers", in, true, "Add supplier failed")
	if err != nil {
		return nil, err
	}
	var supplier domain.Supplier
	if err := json.Unmarshal(env.Data, &supplier); err != nil {
		return nil, fmt.Errorf("decode supplier: %w", err)
	}
	return &supplier, nil
}
