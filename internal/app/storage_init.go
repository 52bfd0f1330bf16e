package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/basket/internal/domain"
	"github.com/vladislavdragonenkov/basket/internal/storage/memory"
	"github.com/vladislavdragonenkov/basket/internal/storage/postgres"
	"github.com/vladislavdragonenkov/basket/internal/storage/rediskv"
)

// storageRuntime — выбранный бэкенд и функция его закрытия.
type storageRuntime struct {
	backend domain.KeyValueStore
	closeFn func() error
}

func (s storageRuntime) close(logger *log.Entry) {
	if s.closeFn == nil {
		return
	}
	if err := s.closeFn(); err != nil {
		logger.WithError(err).Warn("failed to close storage")
	}
}

// initStorage открывает бэкенд согласно cfg.StorageDriver.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (storageRuntime, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		logger.Info("using in-memory cart storage")
		return storageRuntime{backend: memory.NewKeyValueStore()}, nil

	case StorageDriverRedis:
		store, err := rediskv.Open(ctx, cfg.RedisURL)
		if err != nil {
			return storageRuntime{}, fmt.Errorf("init redis storage: %w", err)
		}
		logger.Info("using redis cart storage")
		return storageRuntime{backend: store, closeFn: store.Close}, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return storageRuntime{}, fmt.Errorf("init postgres storage: dsn is empty")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return storageRuntime{}, fmt.Errorf("init postgres storage: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return storageRuntime{}, fmt.Errorf("apply postgres migrations: %w", err)
			}
		}
		logger.WithField("auto_migrate", cfg.PostgresAutoMigrate).Info("using postgres cart storage")
		return storageRuntime{backend: postgres.NewKeyValueStore(store), closeFn: store.Close}, nil

	default:
		return storageRuntime{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
