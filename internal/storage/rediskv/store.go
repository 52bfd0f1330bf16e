package rediskv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/basket/internal/domain"
)

const (
	defaultOpTimeout = 2 * time.Second
)

// Store хранит значения корзины в Redis без TTL.
type Store struct {
	client    redis.UniversalClient
	opTimeout time.Duration
}

// Open разбирает redis URL, создаёт клиента и проверяет доступность сервера.
func Open(ctx context.Context, redisURL string) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	store := New(redis.NewClient(opt))
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return store, nil
}

// New оборачивает уже созданного клиента.
func New(client redis.UniversalClient) *Store {
	return &Store{client: client, opTimeout: defaultOpTimeout}
}

// Get возвращает значение или ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	value, err := s.client.Get(opCtx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, nil
}

// Set перезаписывает значение без срока жизни.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Set(opCtx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete удаляет ключ.
func (s *Store) Delete(ctx context.Context, key string) error {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Del(opCtx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// Ping проверяет доступность Redis.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return domain.ErrStorageUnavailable
	}

	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	return s.client.Ping(opCtx).Err()
}

// Close закрывает клиента.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

var _ domain.KeyValueStore = (*Store)(nil)
