// Package storage opens the store selected by configuration.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/adapters/postgres"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/adapters/sqlite"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/core/ports"
	"github.com/jcmexdev/cafekiosk/internal/pkg/config"
)

func Open(ctx context.Context, cfg *config.Config) (ports.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		store, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreDriverSQLite:
		if cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
				return nil, fmt.Errorf("storage: create data dir: %w", err)
			}
		}
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.StoreDriver)
	}
}
