package domain

import "time"

// Order states as stored and reported by the backend.
const (
	OrderStatusPlaced    = "PLACED"
	OrderStatusCancelled = "CANCELLED"
)

// OrderItem is the only thing a client may say about a line when pricing or
// placing an order: which product and how many. Prices are never accepted
// from clients.
type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// PreviewItem is one server-priced line of an order preview.
type PreviewItem struct {
	ProductID         string `json:"productId"`
	ProductName       string `json:"productName"`
	Quantity          int    `json:"quantity"`
	PerItemPriceCents int64  `json:"perItemPriceCents"`
	SubTotalCents     int64  `json:"subTotalCents"`
}

// OrderPreview is an authoritative quote for a prospective order. It is
// transient: replaced wholesale whenever the cart changes, never persisted.
type OrderPreview struct {
	Items             []PreviewItem `json:"items"`
	TotalPriceCents   int64         `json:"totalPriceCents"`
	ShippingCostCents int64         `json:"shippingCostCents"`
}

// Order is the committed record as returned by the backend.
type Order struct {
	ID                string        `json:"id"`
	UserID            string        `json:"userId"`
	Items             []PreviewItem `json:"items"`
	TotalPriceCents   int64         `json:"totalPriceCents"`
	ShippingCostCents int64         `json:"shippingCostCents"`
	Status            string        `json:"status"`
	OrderDate         time.Time     `json:"orderDate"`
}
