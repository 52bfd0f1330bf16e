package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/basket/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

// kvRepository хранит значения в таблице cart_storage (JSONB).
type kvRepository struct {
	store *Store
}

// NewKeyValueStore создаёт PostgreSQL-реализацию KeyValueStore.
func NewKeyValueStore(store *Store) domain.KeyValueStore {
	return &kvRepository{store: store}
}

func (r *kvRepository) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var value []byte
	err := r.store.DB().QueryRowContext(ctx, `
		SELECT value
		FROM cart_storage
		WHERE key = $1
	`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("select cart storage value: %w", err)
	}
	return value, nil
}

func (r *kvRepository) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.store.DB().ExecContext(ctx, `
		INSERT INTO cart_storage (key, value, created_at, updated_at)
		VALUES ($1, $2::jsonb, NOW(), NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = NOW()
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("upsert cart storage value: %w", err)
	}
	return nil
}

func (r *kvRepository) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.store.DB().ExecContext(ctx, `DELETE FROM cart_storage WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete cart storage value: %w", err)
	}
	return nil
}

func (r *kvRepository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

var _ domain.KeyValueStore = (*kvRepository)(nil)
