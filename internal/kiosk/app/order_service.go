package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/core/ports"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
	"github.com/jcmexdev/cafekiosk/internal/pkg/cache"
	"github.com/jcmexdev/cafekiosk/internal/pkg/headers"
)

const (
	idempotencyTTL = 24 * time.Hour
	// A claim left behind by a crashed request frees the key after this.
	idempotencyClaimTTL = 30 * time.Second

	defaultIdempotencyWait = 5 * time.Second
	defaultIdempotencyPoll = 50 * time.Millisecond
)

type OrderCreateServiceRequest struct {
	ProductNumbers []string
}

type OrderResponse struct {
	ID                 string             `json:"id"`
	Status             domain.OrderStatus `json:"status"`
	TotalPrice         int                `json:"totalPrice"`
	RegisteredDateTime time.Time          `json:"registeredDateTime"`
	Products           []ProductResponse  `json:"products"`
}

func newOrderResponse(o *domain.Order) OrderResponse {
	products := make([]ProductResponse, len(o.Products))
	for i, p := range o.Products {
		products[i] = newProductResponse(p)
	}
	return OrderResponse{
		ID:                 o.ID,
		Status:             o.Status,
		TotalPrice:         o.TotalPrice,
		RegisteredDateTime: o.RegisteredDateTime,
		Products:           products,
	}
}

type OrderService struct {
	store     ports.Store
	publisher ports.OrderEventPublisher // nil-safe: no events
	cache     cache.Cache               // nil-safe: idempotency keys ignored

	// How long a duplicate request waits for the first one to finish, and
	// how often it looks.
	idempotencyWait time.Duration
	idempotencyPoll time.Duration
}

func NewOrderService(store ports.Store, publisher ports.OrderEventPublisher, c cache.Cache) *OrderService {
	return &OrderService{
		store:           store,
		publisher:       publisher,
		cache:           c,
		idempotencyWait: defaultIdempotencyWait,
		idempotencyPoll: defaultIdempotencyPoll,
	}
}

// CreateOrder resolves every requested product number, builds an INIT order
// registered at registeredDateTime and saves it.
//
// A request whose context carries an idempotency key already seen within
// the last 24h returns the order created by the first request. While that
// request is still running, duplicates wait for it and fail with
// domain.ErrIdempotencyKeyInFlight if it does not finish in time. Reusing a
// key for a different product list fails with domain.ErrIdempotencyKeyReused.
func (s *OrderService) CreateOrder(ctx context.Context, req OrderCreateServiceRequest, registeredDateTime time.Time) (OrderResponse, error) {
	ctx, span := tracer.Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	if len(req.ProductNumbers) == 0 {
		return OrderResponse{}, domain.ErrEmptyOrder
	}

	idempKey, _ := ctx.Value(headers.ContextKeyIdempotencyKey).(string)
	fingerprint := requestFingerprint(req.ProductNumbers)
	claimed, replayed, err := s.claimIdempotencyKey(ctx, idempKey, fingerprint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return OrderResponse{}, fmt.Errorf("create order: %w", err)
	}
	if replayed != nil {
		span.SetAttributes(attribute.Bool("order.replayed", true))
		slog.InfoContext(ctx, "order replayed", "idempotency_key", idempKey, "order_id", replayed.ID)
		return *replayed, nil
	}

	var order *domain.Order
	err = s.store.WithinTx(ctx, func(repos ports.Repositories) error {
		products, err := findProductsBy(ctx, repos.Products(), req.ProductNumbers)
		if err != nil {
			return err
		}

		order = domain.NewOrder(products, registeredDateTime)
		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		if claimed {
			s.releaseIdempotencyKey(ctx, idempKey)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return OrderResponse{}, fmt.Errorf("create order: %w", err)
	}

	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.Int("order.total_price", order.TotalPrice),
	)
	slog.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"total_price", order.TotalPrice,
		"items", len(order.Products),
	)

	resp := newOrderResponse(order)
	if claimed {
		s.completeIdempotencyKey(ctx, idempKey, fingerprint, resp)
	}
	s.publishCreated(ctx, order)
	return resp, nil
}

// findProductsBy maps each requested number to its product, keeping the
// request order. A number requested twice yields the product twice.
func findProductsBy(ctx context.Context, repo ports.ProductRepository, productNumbers []string) ([]domain.Product, error) {
	found, err := repo.FindAllByProductNumberIn(ctx, productNumbers)
	if err != nil {
		return nil, err
	}

	byNumber := make(map[string]domain.Product, len(found))
	for _, p := range found {
		byNumber[p.ProductNumber] = p
	}

	products := make([]domain.Product, 0, len(productNumbers))
	for _, number := range productNumbers {
		p, ok := byNumber[number]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, number)
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (OrderResponse, error) {
	ctx, span := tracer.Start(ctx, "OrderService.GetOrder")
	defer span.End()

	order, err := s.store.Orders().FindByID(ctx, id)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("get order: %w", err)
	}
	return newOrderResponse(order), nil
}

// ChangeOrderStatus moves an order to status. The total price is untouched.
func (s *OrderService) ChangeOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (OrderResponse, error) {
	ctx, span := tracer.Start(ctx, "OrderService.ChangeOrderStatus")
	defer span.End()

	var order *domain.Order
	err := s.store.WithinTx(ctx, func(repos ports.Repositories) error {
		var err error
		if order, err = repos.Orders().FindByID(ctx, id); err != nil {
			return err
		}
		if err := order.ChangeStatus(status); err != nil {
			return err
		}
		return repos.Orders().UpdateStatus(ctx, order.ID, order.Status)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return OrderResponse{}, fmt.Errorf("change order status: %w", err)
	}

	slog.InfoContext(ctx, "order status changed", "order_id", order.ID, "status", order.Status)
	return newOrderResponse(order), nil
}

// idempotencyRecord is what the cache holds for a key. A nil Order marks a
// claim whose order is still being created.
type idempotencyRecord struct {
	Fingerprint string         `json:"fingerprint"`
	Order       *OrderResponse `json:"order,omitempty"`
}

// requestFingerprint identifies the product list a key was first used with.
func requestFingerprint(productNumbers []string) string {
	h := sha256.New()
	for _, n := range productNumbers {
		h.Write([]byte(n))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *OrderService) idempotencyKey(key string) string {
	return s.cache.GenerateKey("orders:create", key)
}

// claimIdempotencyKey atomically reserves key for the caller. When another
// request owns the key it either returns that request's order or waits for
// it. claimed reports whether the caller must complete or release the key.
//
// A cache failure disables idempotency for the request instead of failing
// the order.
func (s *OrderService) claimIdempotencyKey(ctx context.Context, key, fingerprint string) (claimed bool, replayed *OrderResponse, err error) {
	if s.cache == nil || key == "" {
		return false, nil, nil
	}
	cacheKey := s.idempotencyKey(key)
	claim, err := json.Marshal(idempotencyRecord{Fingerprint: fingerprint})
	if err != nil {
		return false, nil, err
	}

	deadline := time.Now().Add(s.idempotencyWait)
	for {
		ok, err := s.cache.SetNX(ctx, cacheKey, claim, idempotencyClaimTTL)
		if err != nil {
			slog.WarnContext(ctx, "idempotency claim failed", "idempotency_key", key, "error", err)
			return false, nil, nil
		}
		if ok {
			return true, nil, nil
		}

		raw, err := s.cache.Get(ctx, cacheKey)
		if err != nil {
			slog.WarnContext(ctx, "idempotency lookup failed", "idempotency_key", key, "error", err)
			return false, nil, nil
		}
		// An empty value means the owner released the key: claim again.
		if raw != "" {
			var rec idempotencyRecord
			if err := json.Unmarshal([]byte(raw), &rec); err != nil {
				slog.WarnContext(ctx, "idempotency entry is corrupt", "idempotency_key", key, "error", err)
				return false, nil, nil
			}
			if rec.Fingerprint != fingerprint {
				return false, nil, domain.ErrIdempotencyKeyReused
			}
			if rec.Order != nil {
				return false, rec.Order, nil
			}
		}

		if time.Now().After(deadline) {
			return false, nil, domain.ErrIdempotencyKeyInFlight
		}
		select {
		case <-ctx.Done():
			return false, nil, ctx.Err()
		case <-time.After(s.idempotencyPoll):
		}
	}
}

func (s *OrderService) completeIdempotencyKey(ctx context.Context, key, fingerprint string, resp OrderResponse) {
	b, err := json.Marshal(idempotencyRecord{Fingerprint: fingerprint, Order: &resp})
	if err != nil {
		return
	}
	if err := s.cache.Set(context.WithoutCancel(ctx), s.idempotencyKey(key), b, idempotencyTTL); err != nil {
		slog.WarnContext(ctx, "idempotency store failed", "idempotency_key", key, "error", err)
	}
}

// releaseIdempotencyKey frees the key after a failed order so the client can
// retry with it.
func (s *OrderService) releaseIdempotencyKey(ctx context.Context, key string) {
	if err := s.cache.Delete(context.WithoutCancel(ctx), s.idempotencyKey(key)); err != nil {
		slog.WarnContext(ctx, "idempotency release failed", "idempotency_key", key, "error", err)
	}
}

// publishCreated runs after commit. A failed publish is logged and the
// order stays created.
func (s *OrderService) publishCreated(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		slog.ErrorContext(ctx, "publish order created failed", "order_id", order.ID, "error", err)
	}
}
