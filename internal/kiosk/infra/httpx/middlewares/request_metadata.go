package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/cafekiosk/internal/pkg/headers"
)

// AttachRequestMetadata copies the request ID generated by chi and the
// client's idempotency key into the context, and echoes the request ID.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		idempotencyKey := r.Header.Get(headers.HeaderXIdempotencyKey)

		ctx := context.WithValue(r.Context(), headers.ContextKeyRequestID, requestID)
		if idempotencyKey != "" {
			ctx = context.WithValue(ctx, headers.ContextKeyIdempotencyKey, idempotencyKey)
		}
		if requestID != "" {
			w.Header().Set(headers.HeaderXRequestID, requestID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
