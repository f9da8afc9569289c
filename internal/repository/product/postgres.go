package product

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"onlineshop/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `id::text, name, COALESCE(description, ''), price_cents, COALESCE(category, ''), COALESCE(image_url, ''), stock, COALESCE(supplier_id::text, ''), created_at`

func (r *postgresRepo) List(ctx context.Context, page, size int) ([]domain.Product, int, error) {
	if size <= 0 {
		size = 10
	}
	if page < 0 {
		page = 0
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		r.logger.Printf("product repo: count error=%v", err)
		return nil, 0, err
	}

	const q = `
SELECT ` + productColumns + `
FROM products
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`
	rows, err := r.pool.Query(ctx, q, size, page*size)
	if err != nil {
		r.logger.Printf("product repo: list page=%d size=%d error=%v", page, size, err)
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, 0, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	r.logger.Printf("product repo: list page=%d size=%d count=%d total=%d", page, size, len(result), total)
	return result, total, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
`
	var p domain.Product
	if err := scanProduct(r.pool.QueryRow(ctx, q, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Create(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, name, description, price_cents, category, image_url, stock, supplier_id)
VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), $7, NULLIF($8, '')::uuid)
RETURNING created_at
`
	out := product
	err := r.pool.QueryRow(ctx, q,
		product.ID, product.Name, product.Description, product.PriceCents,
		product.Category, product.ImageURL, product.Stock, product.SupplierID,
	).Scan(&out.CreatedAt)
	if err != nil {
		r.logger.Printf("product repo: create name=%s error=%v", product.Name, err)
		return nil, err
	}
	r.logger.Printf("product repo: created id=%s name=%s", out.ID, out.Name)
	return &out, nil
}

func (r *postgresRepo) Update(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products
SET name = $2, description = NULLIF($3, ''), price_cents = $4, category = NULLIF($5, ''),
    image_url = NULLIF($6, ''), stock = $7, supplier_id = NULLIF($8, '')::uuid
WHERE id = $1
RETURNING created_at
`
	out := product
	err := r.pool.QueryRow(ctx, q,
		product.ID, product.Name, product.Description, product.PriceCents,
		product.Category, product.ImageURL, product.Stock, product.SupplierID,
	).Scan(&out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: update id=%s error=%v", product.ID, err)
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("product repo: delete id=%s error=%v", id, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row, p *domain.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.ImageURL, &p.Stock, &p.SupplierID, &p.CreatedAt)
}
