// Package notify реализует внутрипроцессную рассылку сигнала
// «хранилище корзины изменилось».
package notify

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/basket/internal/domain"
	"github.com/vladislavdragonenkov/basket/internal/metrics"
)

// Forwarder получает каждое локальное уведомление, например для передачи в другие инстансы.
type Forwarder interface {
	Forward()
}

// ForwarderFunc адаптирует функцию к Forwarder.
type ForwarderFunc func()

// Forward вызывает f.
func (f ForwarderFunc) Forward() {
	f()
}

// Broker рассылает сигнал без полезной нагрузки всем подписчикам.
//
// Каналы подписчиков буферизованы на один сигнал: если подписчик ещё не
// обработал предыдущий, новые сигналы сливаются с ним. Publish никогда не блокируется.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[uint64]chan struct{}
	nextID      uint64
	forwarders  []Forwarder
	logger      *log.Entry
	metrics     *metrics.CartMetrics
}

// Option настраивает Broker.
type Option func(*Broker)

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(b *Broker) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics подключает счётчик уведомлений.
func WithMetrics(m *metrics.CartMetrics) Option {
	return func(b *Broker) {
		b.metrics = m
	}
}

// NewBroker создаёт брокер без подписчиков.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		subscribers: make(map[uint64]chan struct{}),
		logger:      log.WithField("component", "notify"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe регистрирует подписчика. Возвращённая функция отписывает его
// и закрывает канал; повторный вызов безопасен.
func (b *Broker) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// AddForwarder подключает получателя всех последующих локальных публикаций.
func (b *Broker) AddForwarder(f Forwarder) {
	if f == nil {
		return
	}
	b.mu.Lock()
	b.forwarders = append(b.forwarders, f)
	b.mu.Unlock()
}

// Publish сообщает о локальном изменении: будит подписчиков и передаёт сигнал форвардерам.
func (b *Broker) Publish() {
	forwarders := b.broadcast()
	for _, f := range forwarders {
		f.Forward()
	}
}

// Broadcast будит только локальных подписчиков. Используется для сигналов,
// пришедших из других инстансов, чтобы не переслать их обратно.
func (b *Broker) Broadcast() {
	b.broadcast()
}

// Subscribers возвращает число активных подписчиков.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func (b *Broker) broadcast() []Forwarder {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	b.metrics.RecordNotification()
	b.logger.WithField("subscribers", len(b.subscribers)).Debug("storage change broadcast")

	forwarders := make([]Forwarder, len(b.forwarders))
	copy(forwarders, b.forwarders)
	return forwarders
}

var _ domain.ChangePublisher = (*Broker)(nil)
