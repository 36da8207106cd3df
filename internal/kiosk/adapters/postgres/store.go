// Package postgres provides a PostgreSQL implementation of ports.Store on top
// of a pgx connection pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/core/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
    id              BIGSERIAL   PRIMARY KEY,
    product_number  TEXT        NOT NULL UNIQUE,
    type            TEXT        NOT NULL,
    selling_status  TEXT        NOT NULL,
    name            TEXT        NOT NULL,
    price           INTEGER     NOT NULL CHECK (price >= 0),
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_products_selling_status ON products(selling_status);

CREATE TABLE IF NOT EXISTS orders (
    id              TEXT        PRIMARY KEY,
    status          TEXT        NOT NULL,
    total_price     INTEGER     NOT NULL,
    registered_at   TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_orders_status_registered ON orders(status, registered_at);

CREATE TABLE IF NOT EXISTS order_products (
    order_id    TEXT    NOT NULL REFERENCES orders(id),
    position    INTEGER NOT NULL,
    product_id  BIGINT  NOT NULL REFERENCES products(id),
    PRIMARY KEY (order_id, position)
);

CREATE TABLE IF NOT EXISTS mail_send_histories (
    id          BIGSERIAL   PRIMARY KEY,
    from_email  TEXT        NOT NULL,
    to_email    TEXT        NOT NULL,
    subject     TEXT        NOT NULL,
    content     TEXT        NOT NULL,
    trace_id    TEXT        NOT NULL DEFAULT '',
    span_id     TEXT        NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// querier is implemented by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ ports.Store = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
	repositories
}

// Open connects to databaseURL and applies the schema.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: apply schema: %w", err)
	}
	return &Store{pool: pool, repositories: repositories{q: pool}}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) WithinTx(ctx context.Context, fn func(repos ports.Repositories) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
	}()

	if err := fn(repositories{q: tx}); err != nil {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			return fmt.Errorf("%w (postgres: rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit tx: %w", err)
	}
	return nil
}

type repositories struct {
	q querier
}

func (r repositories) Products() ports.ProductRepository {
	return &productRepository{q: r.q}
}

func (r repositories) Orders() ports.OrderRepository {
	return &orderRepository{q: r.q}
}

func (r repositories) MailSendHistories() ports.MailSendHistoryRepository {
	return &mailSendHistoryRepository{q: r.q}
}
