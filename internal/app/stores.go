// Package app assembles the storage layer shared by the server and the ops CLI.
package app

import (
	"context"
	"fmt"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/repository/postgres"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
	"github.com/fastygo/taskboard/repository/sqlite"
)

// Stores are the primary repositories of the configured driver.
type Stores struct {
	Driver  string
	Users   repository.UserRepository
	Tasks   repository.TaskRepository
	Columns repository.ColumnRepository
	// Check probes the primary store for the connection monitor.
	Check monitor.Check

	close func() error
}

// OpenStores connects the driver selected by STORAGE_DRIVER. Postgres schemas are migrated
// first when migrations are enabled; SQLite migrates on open.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Driver:  config.DriverSQLite,
			Users:   sqlite.NewUserRepository(db),
			Tasks:   sqlite.NewTaskRepository(db),
			Columns: sqlite.NewColumnRepository(db),
			Check: func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			close: func() error { return sqlite.Close(db) },
		}, nil

	case config.DriverPostgres, "":
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Driver:  config.DriverPostgres,
			Users:   postgres.NewUserRepository(pool),
			Tasks:   postgres.NewTaskRepository(pool),
			Columns: postgres.NewColumnRepository(pool),
			Check:   pool.Ping,
			close: func() error {
				pgInfra.Close(pool, logger)
				return nil
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// CachedTasks returns the task store every writer must share so that cached board reads
// are evicted. A nil client or a non-positive ttl leaves the primary store unwrapped.
func (s *Stores) CachedTasks(client *goRedis.Client, ttl time.Duration) repository.TaskRepository {
	if client == nil || ttl <= 0 {
		return s.Tasks
	}
	return redisRepo.NewTaskCache(s.Tasks, client, ttl)
}

// Close releases the underlying connections.
func (s *Stores) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}
