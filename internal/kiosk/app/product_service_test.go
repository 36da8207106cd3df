package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
)

func TestProductService_CreateProduct(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	saveProduct(t, store, "001", domain.ProductTypeHandmade, domain.SellingStatusSelling, "아메리카노", 4000)

	svc := NewProductService(store, nil)
	resp, err := svc.CreateProduct(ctx, ProductCreateServiceRequest{
		Type:          domain.ProductTypeHandmade,
		SellingStatus: domain.SellingStatusSelling,
		Name:          "카푸치노",
		Price:         5000,
	})
	require.NoError(t, err)

	assert.Equal(t, "002", resp.ProductNumber)
	assert.Equal(t, "카푸치노", resp.Name)
	assert.Equal(t, 5000, resp.Price)

	products, err := store.Products().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "001", products[0].ProductNumber)
	assert.Equal(t, 4000, products[0].Price)
	assert.Equal(t, "002", products[1].ProductNumber)
	assert.Equal(t, domain.ProductTypeHandmade, products[1].Type)
	assert.Equal(t, domain.SellingStatusSelling, products[1].SellingStatus)
}

func TestProductService_CreateProduct_EmptyCatalog(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	svc := NewProductService(store, nil)
	resp, err := svc.CreateProduct(ctx, ProductCreateServiceRequest{
		Type:          domain.ProductTypeHandmade,
		SellingStatus: domain.SellingStatusSelling,
		Name:          "카푸치노",
		Price:         5000,
	})
	require.NoError(t, err)
	assert.Equal(t, "001", resp.ProductNumber)

	products, err := store.Products().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestProductService_CreateProduct_Sequence(t *testing.T) {
	store := setupTestStore(t)
	svc := NewProductService(store, nil)

	var numbers []string
	for i := 0; i < 12; i++ {
		resp, err := svc.CreateProduct(context.Background(), ProductCreateServiceRequest{
			Type:          domain.ProductTypeBakery,
			SellingStatus: domain.SellingStatusSelling,
			Name:          "빵",
			Price:         1000,
		})
		require.NoError(t, err)
		numbers = append(numbers, resp.ProductNumber)
	}

	assert.Equal(t, "001", numbers[0])
	assert.Equal(t, "010", numbers[9])
	assert.Equal(t, "012", numbers[11])
}

func TestProductService_CreateProduct_Invalid(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	svc := NewProductService(store, nil)
	_, err := svc.CreateProduct(ctx, ProductCreateServiceRequest{
		Type:          domain.ProductTypeHandmade,
		SellingStatus: domain.SellingStatusSelling,
		Name:          "",
		Price:         5000,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)

	products, err := store.Products().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductService_CreateProduct_CorruptLatestNumber(t *testing.T) {
	store := setupTestStore(t)
	saveProduct(t, store, "A01", domain.ProductTypeHandmade, domain.SellingStatusSelling, "아메리카노", 4000)

	svc := NewProductService(store, nil)
	_, err := svc.CreateProduct(context.Background(), ProductCreateServiceRequest{
		Type:          domain.ProductTypeHandmade,
		SellingStatus: domain.SellingStatusSelling,
		Name:          "카푸치노",
		Price:         5000,
	})
	assert.Error(t, err)
}

func TestProductService_GetSellingProducts(t *testing.T) {
	store := setupTestStore(t)
	saveProduct(t, store, "001", domain.ProductTypeHandmade, domain.SellingStatusSelling, "아메리카노", 4000)
	saveProduct(t, store, "002", domain.ProductTypeHandmade, domain.SellingStatusHold, "카페라떼", 4500)
	saveProduct(t, store, "003", domain.ProductTypeHandmade, domain.SellingStatusStopSelling, "팥빙수", 7000)

	svc := NewProductService(store, nil)
	products, err := svc.GetSellingProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 2)
	for _, p := range products {
		assert.Contains(t, domain.ForDisplay(), p.SellingStatus)
	}
	assert.Equal(t, "001", products[0].ProductNumber)
	assert.Equal(t, "002", products[1].ProductNumber)
}

func TestProductService_GetSellingProducts_Cache(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	c := newFakeCache()
	svc := NewProductService(store, c)

	saveProduct(t, store, "001", domain.ProductTypeHandmade, domain.SellingStatusSelling, "아메리카노", 4000)

	first, err := svc.GetSellingProducts(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Contains(t, c.values, "test:products:selling:0")

	// Written behind the service's back: the cached listing is still served.
	saveProduct(t, store, "002", domain.ProductTypeHandmade, domain.SellingStatusSelling, "카페라떼", 4500)
	cached, err := svc.GetSellingProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// Creating through the service invalidates it.
	_, err = svc.CreateProduct(ctx, ProductCreateServiceRequest{
		Type:          domain.ProductTypeBottle,
		SellingStatus: domain.SellingStatusSelling,
		Name:          "탄산수",
		Price:         2000,
	})
	require.NoError(t, err)

	fresh, err := svc.GetSellingProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestProductService_GetSellingProducts_CacheFailureFallsBack(t *testing.T) {
	store := setupTestStore(t)
	c := newFakeCache()
	c.failGet = true
	svc := NewProductService(store, c)

	saveProduct(t, store, "001", domain.ProductTypeHandmade, domain.SellingStatusSelling, "아메리카노", 4000)

	products, err := svc.GetSellingProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

// gatedCache holds the first selling-products write until release is closed.
type gatedCache struct {
	*fakeCache
	reached chan struct{}
	release chan struct{}
}

func (c *gatedCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if strings.HasPrefix(key, "test:products:selling:") {
		select {
		case c.reached <- struct{}{}:
		default:
		}
		<-c.release
	}
	return c.fakeCache.Set(ctx, key, value, ttl)
}

func TestProductService_GetSellingProducts_StaleWriteAfterCreate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	c := &gatedCache{
		fakeCache: newFakeCache(),
		reached:   make(chan struct{}, 1),
		release:   make(chan struct{}),
	}
	svc := NewProductService(store, c)

	saveProduct(t, store, "001", domain.ProductTypeHandmade, domain.SellingStatusSelling, "아메리카노", 4000)

	listed := make(chan []ProductResponse, 1)
	go func() {
		products, err := svc.GetSellingProducts(ctx)
		assert.NoError(t, err)
		listed <- products
	}()

	// The listing has read the store and is about to cache one product.
	<-c.reached
	_, err := svc.CreateProduct(ctx, ProductCreateServiceRequest{
		Type:          domain.ProductTypeHandmade,
		SellingStatus: domain.SellingStatusSelling,
		Name:          "카페라떼",
		Price:         4500,
	})
	require.NoError(t, err)

	close(c.release)
	assert.Len(t, <-listed, 1)

	fresh, err := svc.GetSellingProducts(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "002", fresh[1].ProductNumber)
}
