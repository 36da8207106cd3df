package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/adapters/events"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/app"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/core/ports"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/infra/httpx"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/infra/storage"
	"github.com/jcmexdev/cafekiosk/internal/pkg/cache"
	"github.com/jcmexdev/cafekiosk/internal/pkg/config"
	"github.com/jcmexdev/cafekiosk/internal/pkg/metrics"
	"github.com/jcmexdev/cafekiosk/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("kiosk api stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var c cache.Cache
	if cfg.RedisAddr != "" {
		c = cache.NewRedisCache(cfg.RedisAddr, "kiosk")
		defer c.Close()
	}

	var publisher ports.OrderEventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafka := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		defer kafka.Close()
		publisher = kafka
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := httpx.NewHandler(
		app.NewProductService(store, c),
		app.NewOrderService(store, publisher, c),
	)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(handler, metrics.NewServerMetrics(reg, "api"), metrics.Handler(reg)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("kiosk api running",
			"addr", cfg.HTTPAddr,
			"store", cfg.StoreDriver,
			"cache", cfg.RedisAddr != "",
			"events", publisher != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("shutting down kiosk api")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
