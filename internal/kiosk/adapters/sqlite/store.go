// Package sqlite provides the SQLite-backed implementation of ports.Store.
//
// WAL mode is enabled on Open so that readers never block the single writer.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/core/ports"

	// Register the pure-Go SQLite driver.
	// We use modernc.org/sqlite instead of mattn/go-sqlite3 to avoid CGO
	// requirements, making it easier to build and run in Docker (Alpine).
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    product_number  TEXT    NOT NULL UNIQUE,
    type            TEXT    NOT NULL,
    selling_status  TEXT    NOT NULL,
    name            TEXT    NOT NULL,
    price           INTEGER NOT NULL CHECK (price >= 0),
    created_at      TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_products_selling_status ON products(selling_status);

CREATE TABLE IF NOT EXISTS orders (
    id              TEXT    PRIMARY KEY,
    status          TEXT    NOT NULL,
    total_price     INTEGER NOT NULL,
    -- Fixed-width RFC3339 UTC so range queries can compare TEXT.
    registered_at   TEXT    NOT NULL,
    updated_at      TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_status_registered ON orders(status, registered_at);

-- One row per purchased unit; position keeps the request order and lets the
-- same product appear more than once.
CREATE TABLE IF NOT EXISTS order_products (
    order_id    TEXT    NOT NULL REFERENCES orders(id),
    position    INTEGER NOT NULL,
    product_id  INTEGER NOT NULL REFERENCES products(id),
    PRIMARY KEY (order_id, position)
);

-- Append-only audit log of accepted mails.
CREATE TABLE IF NOT EXISTS mail_send_histories (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    from_email  TEXT NOT NULL,
    to_email    TEXT NOT NULL,
    subject     TEXT NOT NULL,
    content     TEXT NOT NULL,
    trace_id    TEXT NOT NULL DEFAULT '',
    span_id     TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL
);
`

// querier is implemented by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ ports.Store = (*Store)(nil)

// Store is the SQLite implementation of ports.Store.
type Store struct {
	db *sql.DB
	repositories
}

// Open opens (or creates) the SQLite database at the given path and applies
// the schema. Pass ":memory:" for a private in-memory database.
//
//	store, err := sqlite.Open("./data/kiosk.db")
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		// busy_timeout waits for locks instead of failing immediately.
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection. It also keeps an
	// in-memory database alive for the lifetime of the pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, repositories: repositories{q: db}}, nil
}

// Close releases the database connection. Call it with defer in main().
func (s *Store) Close() error {
	return s.db.Close()
}

// WithinTx runs fn against repositories bound to a single transaction.
// Repositories taken from the Store itself must not be used inside fn: the
// pool holds one connection and the transaction owns it.
func (s *Store) WithinTx(ctx context.Context, fn func(repos ports.Repositories) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(repositories{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (sqlite: rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit tx: %w", err)
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

// applySchema runs the DDL statements once. Idempotent due to IF NOT EXISTS.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
