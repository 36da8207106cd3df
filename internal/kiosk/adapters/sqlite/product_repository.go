package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
)

const productColumns = `id, product_number, type, selling_status, name, price`

type productRepository struct {
	q querier
}

func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	const q = `
		INSERT INTO products
			(product_number, type, selling_status, name, price, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?)`

	res, err := r.q.ExecContext(ctx, q,
		product.ProductNumber,
		string(product.Type),
		string(product.SellingStatus),
		product.Name,
		product.Price,
		formatTime(time.Now()),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("sqlite: save product %q: %w", product.ProductNumber, domain.ErrDuplicateProduct)
	}
	if err != nil {
		return fmt.Errorf("sqlite: save product %q: %w", product.ProductNumber, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: product id for %q: %w", product.ProductNumber, err)
	}
	product.ID = id
	return nil
}

func (r *productRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products ORDER BY id`
	return r.query(ctx, q)
}

func (r *productRepository) FindAllBySellingStatusIn(ctx context.Context, statuses []domain.ProductSellingStatus) ([]domain.Product, error) {
	if len(statuses) == 0 {
		return []domain.Product{}, nil
	}

	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}

	q := `SELECT ` + productColumns + ` FROM products
		WHERE selling_status IN (` + placeholders(len(args)) + `)
		ORDER BY id`
	return r.query(ctx, q, args...)
}

func (r *productRepository) FindAllByProductNumberIn(ctx context.Context, productNumbers []string) ([]domain.Product, error) {
	if len(productNumbers) == 0 {
		return []domain.Product{}, nil
	}

	args := make([]any, len(productNumbers))
	for i, n := range productNumbers {
		args[i] = n
	}

	q := `SELECT ` + productColumns + ` FROM products
		WHERE product_number IN (` + placeholders(len(args)) + `)
		ORDER BY id`
	return r.query(ctx, q, args...)
}

func (r *productRepository) FindLatestProductNumber(ctx context.Context) (string, bool, error) {
	const q = `SELECT product_number FROM products ORDER BY id DESC LIMIT 1`

	var number string
	err := r.q.QueryRowContext(ctx, q).Scan(&number)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite: latest product number: %w", err)
	}
	return number, true, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func (r *productRepository) query(ctx context.Context, q string, args ...any) ([]domain.Product, error) {
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.ProductNumber, &p.Type, &p.SellingStatus, &p.Name, &p.Price); err != nil {
			return nil, fmt.Errorf("sqlite: scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate products: %w", err)
	}
	return products, nil
}
