package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
)

const (
	productColumns  = `id, product_number, type, selling_status, name, price`
	uniqueViolation = "23505"
)

type productRepository struct {
	q querier
}

func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	const q = `
		INSERT INTO products (product_number, type, selling_status, name, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.q.QueryRow(ctx, q,
		product.ProductNumber,
		string(product.Type),
		string(product.SellingStatus),
		product.Name,
		product.Price,
	).Scan(&product.ID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("postgres: save product %q: %w", product.ProductNumber, domain.ErrDuplicateProduct)
	}
	if err != nil {
		return fmt.Errorf("postgres: save product %q: %w", product.ProductNumber, err)
	}
	return nil
}

func (r *productRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
}

func (r *productRepository) FindAllBySellingStatusIn(ctx context.Context, statuses []domain.ProductSellingStatus) ([]domain.Product, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	return r.query(ctx, `SELECT `+productColumns+` FROM products WHERE selling_status = ANY($1) ORDER BY id`, values)
}

func (r *productRepository) FindAllByProductNumberIn(ctx context.Context, productNumbers []string) ([]domain.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products WHERE product_number = ANY($1) ORDER BY id`, productNumbers)
}

func (r *productRepository) FindLatestProductNumber(ctx context.Context) (string, bool, error) {
	var number string
	err := r.q.QueryRow(ctx, `SELECT product_number FROM products ORDER BY id DESC LIMIT 1`).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres: latest product number: %w", err)
	}
	return number, true, nil
}

func (r *productRepository) query(ctx context.Context, q string, args ...any) ([]domain.Product, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var (
			p           domain.Product
			typ, status string
		)
		if err := rows.Scan(&p.ID, &p.ProductNumber, &typ, &status, &p.Name, &p.Price); err != nil {
			return nil, fmt.Errorf("postgres: scan product: %w", err)
		}
		p.Type = domain.ProductType(typ)
		p.SellingStatus = domain.ProductSellingStatus(status)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate products: %w", err)
	}
	return products, nil
}
