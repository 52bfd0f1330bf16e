package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/basket/internal/catalog"
	"github.com/vladislavdragonenkov/basket/internal/domain"
	"github.com/vladislavdragonenkov/basket/internal/metrics"
	"github.com/vladislavdragonenkov/basket/internal/notify"
	"github.com/vladislavdragonenkov/basket/internal/service/cartpage"
	"github.com/vladislavdragonenkov/basket/internal/storage/kv"
)

// Dependencies содержит связанные компоненты страницы корзины.
type Dependencies struct {
	Store   *kv.Store
	Broker  *notify.Broker
	Catalog *catalog.Client
	Page    *cartpage.Page
	Badge   *cartpage.Badge
	Metrics *metrics.CartMetrics
	Logger  *log.Entry
}

// NewDependencies собирает компоненты поверх выбранного бэкенда хранилища.
// Страница публикует изменения в брокер; счётчик и SSE-клиенты на него подписаны.
func NewDependencies(cfg Config, backend domain.KeyValueStore, m *metrics.CartMetrics, logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	store := kv.NewStore(backend, cfg.StorageNamespace,
		kv.WithLogger(logger.WithField("component", "kv-store")),
		kv.WithMetrics(m),
	)
	broker := notify.NewBroker(
		notify.WithLogger(logger.WithField("component", "notify")),
		notify.WithMetrics(m),
	)
	products := catalog.New(cfg.CatalogBaseURL,
		catalog.WithTimeout(cfg.CatalogTimeout),
		catalog.WithLogger(logger.WithField("component", "catalog")),
		catalog.WithMetrics(m),
	)
	page := cartpage.NewPage(store, products, broker,
		cartpage.WithLogger(logger.WithField("component", "cart-page")),
		cartpage.WithMetrics(m),
	)

	return &Dependencies{
		Store:   store,
		Broker:  broker,
		Catalog: products,
		Page:    page,
		Badge:   cartpage.NewBadge(store, broker),
		Metrics: m,
		Logger:  logger,
	}
}
