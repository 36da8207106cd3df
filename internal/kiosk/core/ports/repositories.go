package ports

import (
	"context"
	"time"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
)

type ProductRepository interface {
	// Save inserts the product and sets its ID.
	Save(ctx context.Context, product *domain.Product) error
	FindAll(ctx context.Context) ([]domain.Product, error)
	FindAllBySellingStatusIn(ctx context.Context, statuses []domain.ProductSellingStatus) ([]domain.Product, error)
	FindAllByProductNumberIn(ctx context.Context, productNumbers []string) ([]domain.Product, error)
	// FindLatestProductNumber returns the number of the most recently
	// created product. ok is false when the catalog is empty.
	FindLatestProductNumber(ctx context.Context) (number string, ok bool, err error)
}

type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	// FindOrdersBy returns orders with the given status registered in [start, end).
	FindOrdersBy(ctx context.Context, start, end time.Time, status domain.OrderStatus) ([]domain.Order, error)
}

type MailSendHistoryRepository interface {
	Save(ctx context.Context, history *domain.MailSendHistory) error
	FindAll(ctx context.Context) ([]domain.MailSendHistory, error)
}

// Repositories gives access to every repository bound to the same
// connection or transaction.
type Repositories interface {
	Products() ProductRepository
	Orders() OrderRepository
	MailSendHistories() MailSendHistoryRepository
}

// Store is the persistence port used by the services. Repositories obtained
// directly from a Store run outside any transaction.
type Store interface {
	Repositories

	// WithinTx runs fn in a single transaction. The transaction commits when
	// fn returns nil and rolls back when it returns an error or panics.
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
	Close() error
}
