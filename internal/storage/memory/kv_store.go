package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/basket/internal/domain"
)

// kvStoreInMemory — простая in-memory реализация KeyValueStore.
type kvStoreInMemory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewKeyValueStore возвращает in-memory хранилище для локальной разработки и тестов.
func NewKeyValueStore() domain.KeyValueStore {
	return &kvStoreInMemory{
		items: make(map[string][]byte),
	}
}

// Get возвращает копию значения или ErrKeyNotFound.
func (s *kvStoreInMemory) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return cloneBytes(value), nil
}

// Set сохраняет копию значения, чтобы избежать мутаций извне.
func (s *kvStoreInMemory) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = cloneBytes(value)
	return nil
}

// Delete удаляет ключ, если он есть.
func (s *kvStoreInMemory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}

// Ping всегда успешен для in-memory хранилища.
func (s *kvStoreInMemory) Ping(context.Context) error {
	return nil
}

func cloneBytes(value []byte) []byte {
	if value == nil {
		return nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out
}

var _ domain.KeyValueStore = (*kvStoreInMemory)(nil)
