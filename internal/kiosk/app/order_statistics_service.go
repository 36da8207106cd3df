package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/core/ports"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
)

const statisticsMailSender = "no-reply@cafekiosk.com"

type MailSender interface {
	SendMail(ctx context.Context, fromEmail, toEmail, subject, content string) (bool, error)
}

type OrderStatisticsService struct {
	store  ports.Store
	mailer MailSender
	loc    *time.Location
}

// NewOrderStatisticsService builds the service. loc decides where a day
// starts; nil means UTC.
func NewOrderStatisticsService(store ports.Store, mailer MailSender, loc *time.Location) *OrderStatisticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderStatisticsService{store: store, mailer: mailer, loc: loc}
}

// SendOrderStatisticsMail mails email the sum of the PAYMENT_COMPLETED orders
// registered on the calendar day of date. Only the year, month and day of
// date are used. A rejected mail is reported as domain.ErrMailSendFailed.
func (s *OrderStatisticsService) SendOrderStatisticsMail(ctx context.Context, date time.Time, email string) error {
	ctx, span := tracer.Start(ctx, "OrderStatisticsService.SendOrderStatisticsMail")
	defer span.End()

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, 1)
	day := start.Format(time.DateOnly)

	// Read outside a transaction: MailService opens its own.
	orders, err := s.store.Orders().FindOrdersBy(ctx, start, end, domain.OrderStatusPaymentCompleted)
	if err != nil {
		return fmt.Errorf("order statistics %s: %w", day, err)
	}

	total := 0
	for _, o := range orders {
		total += o.TotalPrice
	}
	span.SetAttributes(
		attribute.String("statistics.date", day),
		attribute.Int("statistics.orders", len(orders)),
		attribute.Int("statistics.total", total),
	)

	sent, err := s.mailer.SendMail(ctx,
		statisticsMailSender,
		email,
		fmt.Sprintf("[매출통계] %s", day),
		fmt.Sprintf("총 매출 합계는 %d원 입니다.", total),
	)
	if err != nil {
		return fmt.Errorf("order statistics %s: %w", day, err)
	}
	if !sent {
		slog.ErrorContext(ctx, "order statistics mail rejected", "date", day, "to", email)
		return fmt.Errorf("order statistics %s: %w", day, domain.ErrMailSendFailed)
	}

	slog.InfoContext(ctx, "order statistics mail sent", "date", day, "to", email, "orders", len(orders), "total", total)
	return nil
}
