// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	// Embedded zone database: KIOSK_TIMEZONE must resolve in slim images.
	_ "time/tzdata"
)

const (
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

type Config struct {
	HTTPAddr string

	StoreDriver string
	SQLitePath  string
	DatabaseURL string

	// RedisAddr enables the cache when set.
	RedisAddr string

	// KafkaBrokers enables order events when non-empty.
	KafkaBrokers    []string
	KafkaOrderTopic string

	ServiceName  string
	OTLPEndpoint string

	// Location decides where a calendar day starts for sales statistics.
	Location *time.Location

	// MailFail makes the log mail client reject every mail.
	MailFail bool
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		StoreDriver:     getEnv("STORE_DRIVER", StoreDriverSQLite),
		SQLitePath:      getEnv("SQLITE_PATH", "./data/kiosk.db"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		KafkaBrokers:    splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic: getEnv("KAFKA_ORDER_TOPIC", "kiosk.orders.created"),
		ServiceName:     getEnv("OTEL_SERVICE_NAME", "kiosk-api"),
		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		MailFail:        os.Getenv("MAIL_FAIL") == "true",
	}

	loc, err := time.LoadLocation(getEnv("KIOSK_TIMEZONE", "Asia/Seoul"))
	if err != nil {
		return nil, fmt.Errorf("config: KIOSK_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	switch cfg.StoreDriver {
	case StoreDriverSQLite:
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("config: DATABASE_URL is required for STORE_DRIVER=%s", cfg.StoreDriver)
		}
	default:
		return nil, fmt.Errorf("config: unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
