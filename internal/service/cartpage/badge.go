package cartpage

import (
	"context"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/basket/internal/domain"
	"github.com/vladislavdragonenkov/basket/internal/storage/kv"
)

// Subscriber выдаёт канал уведомлений об изменении хранилища.
type Subscriber interface {
	Subscribe() (<-chan struct{}, func())
}

// Badge — счётчик товаров в корзине для шапки магазина. Он не получает
// данных из уведомления и всегда перечитывает хранилище сам.
type Badge struct {
	store  *kv.Store
	broker Subscriber
	count  atomic.Int64
	logger *log.Entry
}

// NewBadge создаёт счётчик.
func NewBadge(store *kv.Store, broker Subscriber) *Badge {
	return &Badge{
		store:  store,
		broker: broker,
		logger: log.WithField("component", "cart-badge"),
	}
}

// Refresh перечитывает корзину из хранилища.
func (b *Badge) Refresh(ctx context.Context) int {
	cart, ok := kv.Get[domain.Cart](ctx, b.store, kv.StorageKey)
	count := 0
	if ok {
		count = cart.Sanitize(domain.PromoCatalog{}).ItemCount()
	}
	b.count.Store(int64(count))
	return count
}

// Count возвращает последнее прочитанное значение.
func (b *Badge) Count() int {
	return int(b.count.Load())
}

// Run обновляет счётчик на каждое уведомление до отмены ctx.
func (b *Badge) Run(ctx context.Context) {
	ch, unsubscribe := b.broker.Subscribe()
	defer unsubscribe()

	b.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			count := b.Refresh(ctx)
			b.logger.WithField("count", count).Debug("badge refreshed")
		}
	}
}
