package domain

import "errors"

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrDuplicateProduct   = errors.New("product number already exists")
	ErrEmptyOrder         = errors.New("order requires at least one product number")
	ErrInvalidOrderStatus = errors.New("invalid order status")

	ErrIdempotencyKeyReused   = errors.New("idempotency key was used for a different order")
	ErrIdempotencyKeyInFlight = errors.New("an order with this idempotency key is still being created")

	// ErrMailSendFailed is returned when the sales statistics mail could not
	// be delivered. It is an invalid-argument class failure.
	ErrMailSendFailed = errors.New("매출 통계 메일 전송에 실패했습니다")
)
