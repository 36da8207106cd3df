package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
)

// setupTestStore connects to KIOSK_TEST_DATABASE_URL and empties every table.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("KIOSK_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("KIOSK_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.pool.Exec(ctx, `TRUNCATE order_products, orders, products, mail_send_histories RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return store
}

func TestProductRepository(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for i, status := range []domain.ProductSellingStatus{
		domain.SellingStatusSelling, domain.SellingStatusHold, domain.SellingStatusStopSelling,
	} {
		p, err := domain.NewProduct([]string{"001", "002", "003"}[i], domain.ProductTypeHandmade, status, "메뉴", 1000*(i+1))
		require.NoError(t, err)
		require.NoError(t, store.Products().Save(ctx, p))
	}

	display, err := store.Products().FindAllBySellingStatusIn(ctx, domain.ForDisplay())
	require.NoError(t, err)
	assert.Len(t, display, 2)

	byNumber, err := store.Products().FindAllByProductNumberIn(ctx, []string{"003"})
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	assert.Equal(t, 3000, byNumber[0].Price)

	latest, ok, err := store.Products().FindLatestProductNumber(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "003", latest)

	dup, _ := domain.NewProduct("001", domain.ProductTypeBottle, domain.SellingStatusSelling, "콜라", 2000)
	assert.ErrorIs(t, store.Products().Save(ctx, dup), domain.ErrDuplicateProduct)
}

func TestOrderRepository(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	p, _ := domain.NewProduct("001", domain.ProductTypeHandmade, domain.SellingStatusSelling, "아메리카노", 4000)
	require.NoError(t, store.Products().Save(ctx, p))

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	order := domain.NewOrder([]domain.Product{*p, *p}, day.Add(time.Hour))
	require.NoError(t, store.Orders().Save(ctx, order))
	require.NoError(t, store.Orders().UpdateStatus(ctx, order.ID, domain.OrderStatusPaymentCompleted))

	found, err := store.Orders().FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 8000, found.TotalPrice)
	assert.Len(t, found.Products, 2)

	orders, err := store.Orders().FindOrdersBy(ctx, day, day.AddDate(0, 0, 1), domain.OrderStatusPaymentCompleted)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)

	_, err = store.Orders().FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
