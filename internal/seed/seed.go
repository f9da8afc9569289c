package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	Name        string
	Description string
	PriceCents  int64
	Category    string
	ImageURL    string
	Stock       int
	Supplier    string
}

type supplierSeed struct {
	Name  string
	Email string
	Phone string
}

// Apply inserts demo data for manual testing: an admin account, two
// suppliers and a small coffee and tea catalog. It is idempotent via
// ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureAdmin(ctx, pool, "admin", "admin@example.com", "admin123"); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	suppliers := []supplierSeed{
		{Name: "Highland Roasters", Email: "orders@highlandroasters.example", Phone: "+1-555-0101"},
		{Name: "Green Leaf Imports", Email: "sales@greenleaf.example", Phone: "+1-555-0102"},
	}
	supplierIDs := make(map[string]string, len(suppliers))
	for _, s := range suppliers {
		id, err := ensureSupplier(ctx, pool, s)
		if err != nil {
			return fmt.Errorf("ensure supplier %s: %w", s.Name, err)
		}
		supplierIDs[s.Name] = id
	}

	products := []productSeed{
		{
			Name:        "Espresso Blend",
			Description: "Dark roast blend for espresso machines",
			PriceCents:  1499,
			Category:    "coffee",
			Stock:       120,
			Supplier:    "Highland Roasters",
		},
		{
			Name:        "Single Origin Ethiopia",
			Description: "Washed Yirgacheffe, light roast",
			PriceCents:  1899,
			Category:    "coffee",
			Stock:       80,
			Supplier:    "Highland Roasters",
		},
		{
			Name:        "Sencha Green Tea",
			Description: "First flush Japanese sencha, loose leaf",
			PriceCents:  1250,
			Category:    "tea",
			Stock:       60,
			Supplier:    "Green Leaf Imports",
		},
		{
			Name:        "Earl Grey",
			Description: "Black tea with bergamot",
			PriceCents:  950,
			Category:    "tea",
			Stock:       90,
			Supplier:    "Green Leaf Imports",
		},
	}
	for _, p := range products {
		if err := upsertProduct(ctx, pool, supplierIDs[p.Supplier], p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}

	return nil
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, username, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (id, username, email, password_hash, role)
VALUES ($1, $2, $3, $4, 'ADMIN')
ON CONFLICT (username) DO NOTHING
`
	_, err = pool.Exec(ctx, q, uuid.NewString(), username, email, string(hash))
	return err
}

func ensureSupplier(ctx context.Context, pool *pgxpool.Pool, s supplierSeed) (string, error) {
	const q = `
INSERT INTO suppliers (id, name, email, phone)
VALUES ($1, $2, $3, $4)
ON CONFLICT (name) DO UPDATE SET email = EXCLUDED.email, phone = EXCLUDED.phone
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, uuid.NewString(), s.Name, s.Email, s.Phone).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, supplierID string, p productSeed) error {
	const q = `
INSERT INTO products (id, name, description, price_cents, category, image_url, stock, supplier_id)
SELECT $1, $2, $3, $4, $5, NULLIF($6, ''), $7, NULLIF($8, '')::uuid
WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $2)
`
	_, err := pool.Exec(ctx, q,
		uuid.NewString(), p.Name, p.Description, p.PriceCents,
		p.Category, p.ImageURL, p.Stock, supplierID,
	)
	return err
}
