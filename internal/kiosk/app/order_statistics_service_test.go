package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/adapters/sqlite"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
)

func saveOrder(t *testing.T, store *sqlite.Store, products []domain.Product, at time.Time, status domain.OrderStatus) {
	t.Helper()
	order := domain.NewOrder(products, at)
	require.NoError(t, order.ChangeStatus(status))
	require.NoError(t, store.Orders().Save(context.Background(), order))
}

func TestOrderStatisticsService_SendOrderStatisticsMail(t *testing.T) {
	store := setupTestStore(t)
	p1 := saveProduct(t, store, "001", domain.ProductTypeHandmade, domain.SellingStatusSelling, "아메리카노", 1000)
	p2 := saveProduct(t, store, "002", domain.ProductTypeHandmade, domain.SellingStatusSelling, "카페라떼", 3000)
	p3 := saveProduct(t, store, "003", domain.ProductTypeBakery, domain.SellingStatusSelling, "크루아상", 5000)

	loc := time.FixedZone("KST", 9*60*60)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, loc)

	saveOrder(t, store, []domain.Product{p1, p2, p3}, day.Add(-time.Second), domain.OrderStatusPaymentCompleted)
	saveOrder(t, store, []domain.Product{p1, p2, p3}, day, domain.OrderStatusPaymentCompleted)
	saveOrder(t, store, []domain.Product{p1, p2, p3}, day.Add(23*time.Hour+59*time.Minute+59*time.Second), domain.OrderStatusPaymentCompleted)
	saveOrder(t, store, []domain.Product{p1, p2, p3}, day.AddDate(0, 0, 1), domain.OrderStatusPaymentCompleted)
	saveOrder(t, store, []domain.Product{p1}, day.Add(time.Hour), domain.OrderStatusInit)

	client := &fakeMailClient{accept: true}
	svc := NewOrderStatisticsService(store, NewMailService(client, store), loc)

	err := svc.SendOrderStatisticsMail(context.Background(), day.Add(15*time.Hour), "owner@cafe.com")
	require.NoError(t, err)

	require.Len(t, client.sent, 1)
	mail := client.sent[0]
	assert.Equal(t, "no-reply@cafekiosk.com", mail.From)
	assert.Equal(t, "owner@cafe.com", mail.To)
	assert.Equal(t, "[매출통계] 2024-03-05", mail.Subject)
	assert.Equal(t, "총 매출 합계는 18000원 입니다.", mail.Content)

	histories, err := store.MailSendHistories().FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, histories, 1)
}

func TestOrderStatisticsService_SingleOrderTotal(t *testing.T) {
	store := setupTestStore(t)
	p1 := saveProduct(t, store, "001", domain.ProductTypeHandmade, domain.SellingStatusSelling, "아메리카노", 4000)
	p2 := saveProduct(t, store, "002", domain.ProductTypeHandmade, domain.SellingStatusSelling, "카푸치노", 5000)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	saveOrder(t, store, []domain.Product{p1, p2}, day.Add(9*time.Hour), domain.OrderStatusPaymentCompleted)

	client := &fakeMailClient{accept: true}
	svc := NewOrderStatisticsService(store, NewMailService(client, store), time.UTC)

	require.NoError(t, svc.SendOrderStatisticsMail(context.Background(), day, "owner@cafe.com"))
	require.Len(t, client.sent, 1)
	assert.Contains(t, client.sent[0].Content, "9000")
}

func TestOrderStatisticsService_NoOrders(t *testing.T) {
	store := setupTestStore(t)
	client := &fakeMailClient{accept: true}
	svc := NewOrderStatisticsService(store, NewMailService(client, store), nil)

	err := svc.SendOrderStatisticsMail(context.Background(), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "owner@cafe.com")
	require.NoError(t, err)
	require.Len(t, client.sent, 1)
	assert.Equal(t, "총 매출 합계는 0원 입니다.", client.sent[0].Content)
}

func TestOrderStatisticsService_MailRejected(t *testing.T) {
	store := setupTestStore(t)
	client := &fakeMailClient{accept: false}
	svc := NewOrderStatisticsService(store, NewMailService(client, store), time.UTC)

	err := svc.SendOrderStatisticsMail(context.Background(), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "owner@cafe.com")
	assert.ErrorIs(t, err, domain.ErrMailSendFailed)

	histories, err := store.MailSendHistories().FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, histories)
}

type failingMailer struct{}

func (failingMailer) SendMail(context.Context, string, string, string, string) (bool, error) {
	return false, errors.New("history store down")
}

func TestOrderStatisticsService_MailerError(t *testing.T) {
	svc := NewOrderStatisticsService(setupTestStore(t), failingMailer{}, time.UTC)

	err := svc.SendOrderStatisticsMail(context.Background(), time.Now(), "owner@cafe.com")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrMailSendFailed)
}
