// Package headers holds the request header names shared by the HTTP layer
// and the services, and the context keys their values are stored under.
package headers

// contextKey is an unexported type for context keys in this package.
// Using a custom type prevents collisions with keys from other packages
// that might use the same underlying string value.
type contextKey string

const (
	HeaderXRequestID      = "X-Request-Id"
	HeaderXIdempotencyKey = "X-Idempotency-Key"

	ContextKeyRequestID      contextKey = "x-request-id"
	ContextKeyIdempotencyKey contextKey = "x-idempotency-key"
)
