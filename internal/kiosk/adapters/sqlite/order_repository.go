package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
)

type orderRepository struct {
	q querier
}

// Save inserts the order header and one order_products row per product.
// Products must already be persisted.
func (r *orderRepository) Save(ctx context.Context, order *domain.Order) error {
	const insertOrder = `
		INSERT INTO orders (id, status, total_price, registered_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`
	const insertItem = `
		INSERT INTO order_products (order_id, position, product_id)
		VALUES (?, ?, ?)`

	_, err := r.q.ExecContext(ctx, insertOrder,
		order.ID,
		string(order.Status),
		order.TotalPrice,
		formatTime(order.RegisteredDateTime),
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save order %q: %w", order.ID, err)
	}

	for i, p := range order.Products {
		if _, err := r.q.ExecContext(ctx, insertItem, order.ID, i, p.ID); err != nil {
			return fmt.Errorf("sqlite: save order %q product %q: %w", order.ID, p.ProductNumber, err)
		}
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
		SELECT id, status, total_price, registered_at
		FROM   orders
		WHERE  id = ?`

	order, err := scanOrder(r.q.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: order %q: %w", id, domain.ErrOrderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find order %q: %w", id, err)
	}

	if order.Products, err = r.loadProducts(ctx, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	const q = `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`

	res, err := r.q.ExecContext(ctx, q, string(status), formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("sqlite: update order %q status: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update order %q status: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("sqlite: order %q: %w", id, domain.ErrOrderNotFound)
	}
	return nil
}

func (r *orderRepository) FindOrdersBy(ctx context.Context, start, end time.Time, status domain.OrderStatus) ([]domain.Order, error) {
	const q = `
		SELECT id, status, total_price, registered_at
		FROM   orders
		WHERE  status = ? AND registered_at >= ? AND registered_at < ?
		ORDER  BY registered_at, id`

	rows, err := r.q.QueryContext(ctx, q, string(status), formatTime(start), formatTime(end))
	if err != nil {
		return nil, fmt.Errorf("sqlite: find orders: %w", err)
	}

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("sqlite: scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("sqlite: iterate orders: %w", err)
	}
	// Release the connection before loading products: the pool holds one.
	_ = rows.Close()

	for i := range orders {
		if orders[i].Products, err = r.loadProducts(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) loadProducts(ctx context.Context, orderID string) ([]domain.Product, error) {
	const q = `
		SELECT p.id, p.product_number, p.type, p.selling_status, p.name, p.price
		FROM   order_products op
		JOIN   products p ON p.id = op.product_id
		WHERE  op.order_id = ?
		ORDER  BY op.position`

	return (&productRepository{q: r.q}).query(ctx, q, orderID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order        domain.Order
		registeredAt string
	)
	if err := row.Scan(&order.ID, &order.Status, &order.TotalPrice, &registeredAt); err != nil {
		return nil, err
	}

	t, err := parseTime(registeredAt)
	if err != nil {
		return nil, err
	}
	order.RegisteredDateTime = t
	return &order, nil
}
