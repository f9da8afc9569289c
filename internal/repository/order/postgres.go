package order

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

func (r *postgresRepo) Create(ctx context.Context, order domain.Order) (*domain.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const insertOrder = `
INSERT INTO orders (id, user_id, total_price_cents, shipping_cost_cents, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING order_date
`
	out := order
	err = tx.QueryRow(ctx, insertOrder,
		order.ID, order.UserID, order.TotalPriceCents, order.ShippingCostCents, order.Status,
	).Scan(&out.OrderDate)
	if err != nil {
		r.logger.Printf("order repo: create user_id=%s error=%v", order.UserID, err)
		return nil, err
	}

	const insertItem = `
INSERT INTO order_items (order_id, product_id, product_name, quantity, per_item_price_cents, sub_total_cents)
VALUES ($1, $2, $3, $4, $5, $6)
`
	for _, item := range order.Items {
		if _, err := tx.Exec(ctx, insertItem,
			order.ID, item.ProductID, item.ProductName, item.Quantity, item.PerItemPriceCents, item.SubTotalCents,
		); err != nil {
			r.logger.Printf("order repo: create item order_id=%s product_id=%s error=%v", order.ID, item.ProductID, err)
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created id=%s user_id=%s items=%d", out.ID, out.UserID, len(out.Items))
	return &out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT id::text, user_id::text, total_price_cents, shipping_cost_cents, status, order_date
FROM orders
WHERE id = $1
`
	var o domain.Order
	err := r.pool.QueryRow(ctx, q, id).Scan(&o.ID, &o.UserID, &o.TotalPriceCents, &o.ShippingCostCents, &o.Status, &o.OrderDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get id=%s error=%v", id, err)
		return nil, err
	}
	items, err := r.itemsFor(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	const q = `
SELECT id::text, user_id::text, total_price_cents, shipping_cost_cents, status, order_date
FROM orders
WHERE user_id = $1
ORDER BY order_date DESC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		r.logger.Printf("order repo: list user_id=%s error=%v", userID, err)
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []string
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalPriceCents, &o.ShippingCostCents, &o.Status, &o.OrderDate); err != nil {
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *postgresRepo) SetStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		r.logger.Printf("order repo: set status id=%s error=%v", id, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("order repo: id=%s status=%s", id, status)
	return nil
}

func (r *postgresRepo) itemsFor(ctx context.Context, orderIDs []string) (map[string][]domain.PreviewItem, error) {
	const q = `
SELECT order_id::text, product_id::text, product_name, quantity, per_item_price_cents, sub_total_cents
FROM order_items
WHERE order_id = ANY($1)
ORDER BY id
`
	rows, err := r.pool.Query(ctx, q, orderIDs)
	if err != nil {
		r.logger.Printf("order repo: items error=%v", err)
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]domain.PreviewItem)
	for rows.Next() {
		var orderID string
		var item domain.PreviewItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.PerItemPriceCents, &item.SubTotalCents); err != nil {
			return nil, err
		}
		result[orderID] = append(result[orderID], item)
	}
	return result, rows.Err()
}
