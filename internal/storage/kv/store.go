package kv

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/basket/internal/domain"
	"github.com/vladislavdragonenkov/basket/internal/metrics"
)

const (
	// StorageKey — ключ, под которым хранится корзина.
	StorageKey = "basket"

	defaultOpTimeout = 3 * time.Second
)

// Store — типизированная обёртка над бэкендом ключ-значение.
// Ошибки бэкенда и декодирования логируются и считаются в метриках,
// но никогда не возвращаются вызывающему коду.
type Store struct {
	backend   domain.KeyValueStore
	namespace string
	timeout   time.Duration
	logger    *log.Entry
	metrics   *metrics.CartMetrics
}

// Option настраивает Store.
type Option func(*Store)

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics подключает метрики ошибок хранилища.
func WithMetrics(m *metrics.CartMetrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithTimeout ограничивает длительность одной операции бэкенда.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// NewStore создаёт адаптер. Пустой namespace означает ключи без префикса.
func NewStore(backend domain.KeyValueStore, namespace string, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		namespace: namespace,
		timeout:   defaultOpTimeout,
		logger:    log.WithField("component", "kv-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key возвращает полный ключ бэкенда.
func (s *Store) Key(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

// Namespace возвращает пространство имён ключей.
func (s *Store) Namespace() string {
	return s.namespace
}

// Ping проверяет бэкенд; используется health-чекером.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.backend == nil {
		return domain.ErrStorageUnavailable
	}
	return s.backend.Ping(ctx)
}

// Delete удаляет ключ. Ошибка только логируется.
func (s *Store) Delete(ctx context.Context, key string) {
	if s.unavailable("delete", key) {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.backend.Delete(ctx, s.Key(key)); err != nil {
		s.fail("delete", key, err)
	}
}

func (s *Store) read(ctx context.Context, key string) ([]byte, bool) {
	if s.unavailable("get", key) {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.backend.Get(ctx, s.Key(key))
	if err != nil {
		if !domain.IsNotFound(err) {
			s.fail("get", key, err)
		}
		return nil, false
	}
	return raw, true
}

func (s *Store) write(ctx context.Context, key string, raw []byte) bool {
	if s.unavailable("set", key) {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.backend.Set(ctx, s.Key(key), raw); err != nil {
		s.fail("set", key, err)
		return false
	}
	return true
}

func (s *Store) unavailable(operation, key string) bool {
	if s != nil && s.backend != nil {
		return false
	}
	if s != nil {
		s.fail(operation, key, domain.ErrStorageUnavailable)
	}
	return true
}

func (s *Store) fail(operation, key string, err error) {
	s.metrics.RecordStorageError(operation)
	s.logger.WithError(err).WithFields(log.Fields{
		"operation": operation,
		"key":       s.Key(key),
	}).Warn("storage operation failed")
}

// Get читает и декодирует значение. Отсутствующий ключ, недоступное
// хранилище и битый JSON одинаково дают (zero, false).
func Get[T any](ctx context.Context, s *Store, key string) (T, bool) {
	var value T
	raw, ok := s.read(ctx, key)
	if !ok {
		return value, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		s.fail("decode", key, err)
		var zero T
		return zero, false
	}
	return value, true
}

// Set кодирует и сохраняет значение. Возвращает false, если запись не удалась;
// вызывающий код вправе это игнорировать.
func Set[T any](ctx context.Context, s *Store, key string, value T) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		if s != nil {
			s.fail("encode", key, err)
		}
		return false
	}
	return s.write(ctx, key, raw)
}
