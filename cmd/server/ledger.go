package main

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Notho-freedom/Autoresponder/internal/config"
	"github.com/Notho-freedom/Autoresponder/internal/repo"
	"github.com/Notho-freedom/Autoresponder/internal/services"
)

// openLedger connects the configured backend and prepares its schema.
// The returned func releases the connection pool.
func openLedger(ctx context.Context, cfg config.LedgerConfig, tracing bool) (services.Ledger, func() error, error) {
	switch cfg.Driver {
	case config.LedgerRedis:
		c, err := repo.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		return repo.NewRedisLedger(c, cfg.RedisPrefix), c.Close, nil

	case config.LedgerSQLite, config.LedgerPostgres:
		var (
			db  *gorm.DB
			err error
		)
		if cfg.Driver == config.LedgerPostgres {
			db, err = repo.OpenPostgres(ctx, cfg.DatabaseURL)
		} else {
			db, err = repo.OpenSQLite(cfg.DBPath)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", cfg.Driver, err)
		}
		closeDB := func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		if tracing {
			if err := repo.EnableTracing(db); err != nil {
				_ = closeDB()
				return nil, nil, fmt.Errorf("gorm tracing: %w", err)
			}
		}
		if err := repo.AutoMigrate(db); err != nil {
			_ = closeDB()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return repo.NewGormLedger(db), closeDB, nil
	}
	return nil, nil, fmt.Errorf("unsupported ledger driver %q", cfg.Driver)
}
