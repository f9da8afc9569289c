package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"onlineshop/internal/domain"
)

// orderRequest is the only payload shape for pricing and placing orders.
type orderRequest struct {
	OrderItems []domain.OrderItem `json:"orderItems"`
}

// PreviewOrder asks the backend to price a prospective order. Only product
// ids and quantities are sent; pricing is entirely server-side.
func (c *Client) PreviewOrder(ctx context.Context, items []domain.OrderItem) (*domain.OrderPreview, error) {
	valid := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity <= 0 {
			continue
		}
		valid = append(valid, item)
	}

	env, err := c.do(ctx, http.MethodPost, "/order/preview", orderRequest{OrderItems: valid}, false, "Fetch order preview failed")
	if err != nil {
		return nil, err
	}
	var preview domain.OrderPreview
	if err := json.Unmarshal(env.Data, &preview); err != nil {
		return nil, fmt.Errorf("decode preview: %w", err)
	}
	return &preview, nil
}

// CreateOrder places an order for the authenticated user. Returns the
// committed order record and the server's success message.
func (c *Client) CreateOrder(ctx context.Context, items []domain.OrderItem) (*domain.Order, string, error) {
	env, err := c.do(ctx, http.MethodPost, "/order/create", orderRequest{OrderItems: items}, true, "Place order failed")
	if err != nil {
		return nil, "", err
	}
	var order domain.Order
	if err := json.Unmarshal(env.Data, &order); err != nil {
		return nil, "", fmt.Errorf("decode order: %w", err)
	}
	return &order, env.Message, nil
}

// Orders lists the authenticated user's order history.
func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	env, err := c.do(ctx, http.MethodGet, "/order/orders", nil, true, "Fetch orders failed")
	if err != nil {
		return nil, err
	}
	var orders []domain.Order
	if err := json.Unmarshal(env.Data, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

// DeleteOrder cancels an order. Returns the server's confirmation message.
func (c *Client) DeleteOrder(ctx context.Context, orderID string) (string, error) {
	env, err := c.do(ctx, http.MethodDelete, "/order/"+orderID, nil, true, "Delete order failed")
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
