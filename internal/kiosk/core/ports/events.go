package ports

import (
	"context"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
)

type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
}
