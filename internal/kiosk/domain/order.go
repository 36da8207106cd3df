package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusInit             OrderStatus = "INIT"
	OrderStatusCanceled         OrderStatus = "CANCELED"
	OrderStatusPaymentCompleted OrderStatus = "PAYMENT_COMPLETED"
	OrderStatusPaymentFailed    OrderStatus = "PAYMENT_FAILED"
	OrderStatusReceived         OrderStatus = "RECEIVED"
	OrderStatusCompleted        OrderStatus = "COMPLETED"
)

var orderStatusText = map[OrderStatus]string{
	OrderStatusInit:             "주문생성",
	OrderStatusCanceled:         "주문취소",
	OrderStatusPaymentCompleted: "결제완료",
	OrderStatusPaymentFailed:    "결제실패",
	OrderStatusReceived:         "주문접수",
	OrderStatusCompleted:        "처리완료",
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusText[s]
	return ok
}

func (s OrderStatus) Text() string { return orderStatusText[s] }

// Order is a snapshot of the products bought at RegisteredDateTime.
// TotalPrice is computed once in NewOrder and never recomputed.
type Order struct {
	ID                 string
	Status             OrderStatus
	TotalPrice         int
	RegisteredDateTime time.Time
	Products           []Product
}

// NewOrder builds an INIT order from products in the given order.
// Duplicates are kept and each occurrence counts towards the total.
func NewOrder(products []Product, registeredDateTime time.Time) *Order {
	items := make([]Product, len(products))
	copy(items, products)

	return &Order{
		ID:                 uuid.NewString(),
		Status:             OrderStatusInit,
		TotalPrice:         calculateTotalPrice(items),
		RegisteredDateTime: registeredDateTime,
		Products:           items,
	}
}

func (o *Order) ChangeStatus(status OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidOrderStatus, status)
	}
	o.Status = status
	return nil
}

func calculateTotalPrice(products []Product) int {
	total := 0
	for _, p := range products {
		total += p.Price
	}
	return total
}
