// Command order-statistics mails the payment-completed sales total of one
// day to the given address.
//
//	order-statistics -date 2024-03-01 -email owner@cafe.com
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/adapters/mail"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/app"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/infra/storage"
	"github.com/jcmexdev/cafekiosk/internal/pkg/config"
	"github.com/jcmexdev/cafekiosk/internal/pkg/telemetry"
)

func main() {
	dateFlag := flag.String("date", "", "sales day as YYYY-MM-DD (default: yesterday)")
	email := flag.String("email", "", "recipient address")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger("order-statistics")

	if err := run(cfg, *dateFlag, *email); err != nil {
		slog.Error("order statistics failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, dateFlag, email string) error {
	if email == "" {
		return fmt.Errorf("-email is required")
	}
	date, err := parseDate(dateFlag, time.Now(), cfg.Location)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, "order-statistics", cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	client := mail.NewLogClient(slog.Default(), cfg.MailFail)
	stats := app.NewOrderStatisticsService(store, app.NewMailService(client, store), cfg.Location)
	return stats.SendOrderStatisticsMail(ctx, date, email)
}

// parseDate reads s as a calendar day in loc. An empty s means the day
// before now.
func parseDate(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if s == "" {
		y, m, d := now.In(loc).AddDate(0, 0, -1).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	date, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("-date: %w", err)
	}
	return date, nil
}
