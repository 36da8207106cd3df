package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
)

type orderRepository struct {
	q querier
}

func (r *orderRepository) Save(ctx context.Context, order *domain.Order) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO orders (id, status, total_price, registered_at) VALUES ($1, $2, $3, $4)`,
		order.ID, string(order.Status), order.TotalPrice, order.RegisteredDateTime,
	)
	if err != nil {
		return fmt.Errorf("postgres: save order %q: %w", order.ID, err)
	}

	for i, p := range order.Products {
		_, err := r.q.Exec(ctx,
			`INSERT INTO order_products (order_id, position, product_id) VALUES ($1, $2, $3)`,
			order.ID, i, p.ID,
		)
		if err != nil {
			return fmt.Errorf("postgres: save order %q product %q: %w", order.ID, p.ProductNumber, err)
		}
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var (
		order  domain.Order
		status string
	)
	err := r.q.QueryRow(ctx,
		`SELECT id, status, total_price, registered_at FROM orders WHERE id = $1`, id,
	).Scan(&order.ID, &status, &order.TotalPrice, &order.RegisteredDateTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres: order %q: %w", id, domain.ErrOrderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find order %q: %w", id, err)
	}
	order.Status = domain.OrderStatus(status)

	if order.Products, err = r.loadProducts(ctx, order.ID); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`, string(status), id,
	)
	if err != nil {
		return fmt.Errorf("postgres: update order %q status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: order %q: %w", id, domain.ErrOrderNotFound)
	}
	return nil
}

func (r *orderRepository) FindOrdersBy(ctx context.Context, start, end time.Time, status domain.OrderStatus) ([]domain.Order, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, status, total_price, registered_at
		FROM   orders
		WHERE  status = $1 AND registered_at >= $2 AND registered_at < $3
		ORDER  BY registered_at, id`,
		string(status), start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: find orders: %w", err)
	}

	orders := []domain.Order{}
	for rows.Next() {
		var (
			o      domain.Order
			status string
		)
		if err := rows.Scan(&o.ID, &status, &o.TotalPrice, &o.RegisteredDateTime); err != nil {
			rows.Close()
			return nil, fmt.Errorf("postgres: scan order: %w", err)
		}
		o.Status = domain.OrderStatus(status)
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate orders: %w", err)
	}

	// Rows are closed first: inside a transaction the connection is shared.
	for i := range orders {
		if orders[i].Products, err = r.loadProducts(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) loadProducts(ctx context.Context, orderID string) ([]domain.Product, error) {
	return (&productRepository{q: r.q}).query(ctx, `
		SELECT p.id, p.product_number, p.type, p.selling_status, p.name, p.price
		FROM   order_products op
		JOIN   products p ON p.id = op.product_id
		WHERE  op.order_id = $1
		ORDER  BY op.position`, orderID)
}
