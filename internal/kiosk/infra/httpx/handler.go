package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/app"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
)

// Handler serves the kiosk HTTP API.
type Handler struct {
	products *app.ProductService
	orders   *app.OrderService
	now      func() time.Time
}

func NewHandler(products *app.ProductService, orders *app.OrderService) *Handler {
	return &Handler{products: products, orders: orders, now: time.Now}
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductCreateRequest
	if !decode(w, r, &req) {
		return
	}
	if msg := req.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	resp, err := h.products.CreateProduct(r.Context(), req.toServiceRequest())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, resp)
}

func (h *Handler) GetSellingProducts(w http.ResponseWriter, r *http.Request) {
	resp, err := h.products.GetSellingProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, resp)
}

// CreateOrder registers the order at the time the request is handled.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderCreateRequest
	if !decode(w, r, &req) {
		return
	}
	if msg := req.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	resp, err := h.orders.CreateOrder(r.Context(), req.toServiceRequest(), h.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, resp)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	resp, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, resp)
}

func (h *Handler) ChangeOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req OrderStatusRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.orders.ChangeOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, resp)
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, nil)
}

const maxRequestBodyBytes = 1 << 20

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return false
	}
	return true
}

// writeServiceError maps domain errors to status codes. Anything unknown is
// logged and reported as 500 without details.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidProduct),
		errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrInvalidOrderStatus),
		errors.Is(err, domain.ErrMailSendFailed):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateProduct),
		errors.Is(err, domain.ErrIdempotencyKeyReused),
		errors.Is(err, domain.ErrIdempotencyKeyInFlight):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, newApiResponse(http.StatusOK, "", data))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, newApiResponse(status, msg, nil))
}
