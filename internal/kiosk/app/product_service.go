package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/core/ports"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
	"github.com/jcmexdev/cafekiosk/internal/pkg/cache"
)

const (
	firstProductNumber = "001"
	sellingProductsTTL = time.Minute
)

type ProductCreateServiceRequest struct {
	Type          domain.ProductType
	SellingStatus domain.ProductSellingStatus
	Name          string
	Price         int
}

type ProductResponse struct {
	ID            int64                       `json:"id"`
	ProductNumber string                      `json:"productNumber"`
	Type          domain.ProductType          `json:"type"`
	SellingStatus domain.ProductSellingStatus `json:"sellingStatus"`
	Name          string                      `json:"name"`
	Price         int                         `json:"price"`
}

func newProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		ProductNumber: p.ProductNumber,
		Type:          p.Type,
		SellingStatus: p.SellingStatus,
		Name:          p.Name,
		Price:         p.Price,
	}
}

type ProductService struct {
	store ports.Store
	cache cache.Cache // nil-safe: listing is read from the store every time
}

func NewProductService(store ports.Store, c cache.Cache) *ProductService {
	return &ProductService{store: store, cache: c}
}

// CreateProduct numbers the product after the latest one in the catalog
// and saves it. Concurrent creators may race for the same number; the store's
// unique constraint rejects the loser with domain.ErrDuplicateProduct.
func (s *ProductService) CreateProduct(ctx context.Context, req ProductCreateServiceRequest) (ProductResponse, error) {
	ctx, span := tracer.Start(ctx, "ProductService.CreateProduct")
	defer span.End()

	var created *domain.Product
	err := s.store.WithinTx(ctx, func(repos ports.Repositories) error {
		number, err := nextProductNumber(ctx, repos.Products())
		if err != nil {
			return err
		}

		product, err := domain.NewProduct(number, req.Type, req.SellingStatus, req.Name, req.Price)
		if err != nil {
			return err
		}
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		created = product
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ProductResponse{}, fmt.Errorf("create product: %w", err)
	}

	span.SetAttributes(attribute.String("product.number", created.ProductNumber))
	slog.InfoContext(ctx, "product created",
		"product_number", created.ProductNumber,
		"type", created.Type,
		"price", created.Price,
	)

	s.invalidateSellingProducts(ctx)
	return newProductResponse(*created), nil
}

// nextProductNumber returns the successor of the latest product number,
// zero-padded to three digits, or "001" for an empty catalog.
func nextProductNumber(ctx context.Context, products ports.ProductRepository) (string, error) {
	latest, ok, err := products.FindLatestProductNumber(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return firstProductNumber, nil
	}

	n, err := strconv.Atoi(latest)
	if err != nil {
		return "", fmt.Errorf("latest product number %q is not numeric: %w", latest, err)
	}
	return fmt.Sprintf("%03d", n+1), nil
}

// GetSellingProducts lists the products customers may see, in catalog order.
func (s *ProductService) GetSellingProducts(ctx context.Context) ([]ProductResponse, error) {
	ctx, span := tracer.Start(ctx, "ProductService.GetSellingProducts")
	defer span.End()

	key, cacheable := s.sellingProductsKey(ctx)
	if cacheable {
		if cached, ok := s.cachedSellingProducts(ctx, key); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		}
	}

	products, err := s.store.Products().FindAllBySellingStatusIn(ctx, domain.ForDisplay())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("get selling products: %w", err)
	}

	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = newProductResponse(p)
	}

	if cacheable {
		s.cacheSellingProducts(ctx, key, out)
	}
	return out, nil
}

func (s *ProductService) sellingGenerationKey() string {
	return s.cache.GenerateKey("products", "selling:generation")
}

// sellingProductsKey names the listing under the current catalog
// generation. The generation is read before the store, so a listing that
// races with CreateProduct lands under a generation nobody reads anymore.
// It reports false when there is no usable cache.
func (s *ProductService) sellingProductsKey(ctx context.Context) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	generation, err := s.cache.Get(ctx, s.sellingGenerationKey())
	if err != nil {
		slog.WarnContext(ctx, "selling products cache read failed", "error", err)
		return "", false
	}
	if generation == "" {
		generation = "0"
	}
	return s.cache.GenerateKey("products", "selling:"+generation), true
}

func (s *ProductService) cachedSellingProducts(ctx context.Context, key string) ([]ProductResponse, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "selling products cache read failed", "error", err)
		return nil, false
	}
	if raw == "" {
		return nil, false
	}

	var out []ProductResponse
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		slog.WarnContext(ctx, "selling products cache entry is corrupt", "error", err)
		return nil, false
	}
	return out, true
}

func (s *ProductService) cacheSellingProducts(ctx context.Context, key string, products []ProductResponse) {
	b, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, b, sellingProductsTTL); err != nil {
		slog.WarnContext(ctx, "selling products cache write failed", "error", err)
	}
}

// invalidateSellingProducts moves the catalog to a new generation. Listings
// cached under older generations expire on their own.
func (s *ProductService) invalidateSellingProducts(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, s.sellingGenerationKey()); err != nil {
		slog.WarnContext(ctx, "selling products cache invalidation failed", "error", err)
	}
}
