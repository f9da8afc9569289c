package domain

import "time"

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	Category    string    `json:"category,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Stock       int       `json:"stock"`
	SupplierID  string    `json:"supplierId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProductPage is the canonical paginated product listing. Backend revisions
// answer either a bare array or a content/totalPages envelope; both are
// normalized into this shape at the client boundary.
type ProductPage struct {
	Products     []Product `json:"products"`
	Page         int       `json:"page"`
	Size         int       `json:"size"`
	TotalPages   int       `json:"totalPages"`
	TotalResults int       `json:"totalResults"`
}
