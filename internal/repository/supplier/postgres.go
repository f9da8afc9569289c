package supplier

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5/pgconn"
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

func (r *postgresRepo) List(ctx context.Context) ([]domain.Supplier, error) {
	const q = `
SELECT id::text, name, COALESCE(email, ''), COALESCE(phone, ''), created_at
FROM suppliers
ORDER BY created_at
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("supplier repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Supplier
	for rows.Next() {
		var s domain.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Create(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	const q = `
INSERT INTO suppliers (id, name, email, phone)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
RETURNING created_at
`
	out := supplier
	err := r.pool.QueryRow(ctx, q, supplier.ID, supplier.Name, supplier.Email, supplier.Phone).Scan(&out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("supplier repo: create name=%s error=%v", supplier.Name, err)
		return nil, err
	}
	r.logger.Printf("supplier repo: created id=%s name=%s", out.ID, out.Name)
	return &out, nil
}
