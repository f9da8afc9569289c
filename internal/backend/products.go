package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"onlineshop/internal/domain"
)

// ProductInput is the admin create/update payload.
type ProductInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents" validate:"gte=0"`
	Category    string `json:"category"`
	ImageURL    string `json:"imageUrl"`
	Stock       int    `json:"stock" validate:"gte=0"`
	SupplierID  string `json:"supplierId"`
}

// Products fetches one page of the catalog and normalizes whichever paging
// shape the backend revision answers with.
func (c *Client) Products(ctx context.Context, page, size int) (domain.ProductPage, error) {
	path := fmt.Sprintf("/products?page=%d&size=%d", page, size)
	env, err := c.do(ctx, http.MethodGet, path, nil, false, "Fetch products failed")
	if err != nil {
		return domain.ProductPage{}, err
	}
	return decodeProductPage(env.Data, page, size)
}

// ProductByID fetches a single product.
func (c *Client) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	env, err := c.do(ctx, http.MethodGet, "/products/"+id, nil, false, "Fetch product failed")
	if err != nil {
		return nil, err
	}
	var p domain.Product
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return &p, nil
}

// CreateProduct adds a product to the catalog. Admin only.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("validate product form: %w", err)
	}
	env, err := c.do(ctx, http.MethodPost, "/products", in, true, "Create product failed")
	if err != nil {
		return nil, err
	}
	var p domain.Product
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return &p, nil
}

// UpdateProduct replaces a product's fields. Admin only.
func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("validate product form: %w", err)
	}
	env, err := c.do(ctx, http.MethodPut, "/products/"+id, in, true, "Update product failed")
	if err != nil {
		return nil, err
	}
	var p domain.Product
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return &p, nil
}

// DeleteProduct removes a product. Admin only.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/products/"+id, nil, true, "Delete product failed")
	return err
}

// pagedData is the content/totalPages paging envelope some backend revisions
// answer with instead of a bare array.
type pagedData struct {
	Content      []domain.Product `json:"content"`
	Page         int              `json:"page"`
	Size         int              `json:"size"`
	TotalPages   int              `json:"totalPages"`
	TotalResults int              `json:"totalResults"`
}

// decodeProductPage handles both observed shapes of the products payload:
// a bare array, or a paged object. Everything downstream only ever sees the
// canonical ProductPage.
func decodeProductPage(raw json.RawMessage, page, size int) (domain.ProductPage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var products []domain.Product
		if err := json.Unmarshal(trimmed, &products); err != nil {
			return domain.ProductPage{}, fmt.Errorf("decode product list: %w", err)
		}
		return domain.ProductPage{
			Products:     products,
			Page:         page,
			Size:         size,
			TotalPages:   1,
			TotalResults: len(products),
		}, nil
	}

	var paged pagedData
	if err := json.Unmarshal(trimmed, &paged); err != nil {
		return domain.ProductPage{}, fmt.Errorf("decode product page: %w", err)
	}
	out := domain.ProductPage{
		Products:     paged.Content,
		Page:         paged.Page,
		Size:         paged.Size,
		TotalPages:   paged.TotalPages,
		TotalResults: paged.TotalResults,
	}
	if out.Size == 0 {
		out.Size = size
	}
	return out, nil
}
