// Package cartpage содержит контроллер страницы корзины: он держит
// зеркало корзины в памяти, сохраняет каждое изменение в хранилище и
// уведомляет остальные представления.
package cartpage

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/basket/internal/catalog"
	"github.com/vladislavdragonenkov/basket/internal/domain"
	"github.com/vladislavdragonenkov/basket/internal/metrics"
	"github.com/vladislavdragonenkov/basket/internal/storage/kv"
)

// Операции корзины для метрик и логов.
const (
	OperationIncrement = "increment"
	OperationDecrement = "decrement"
	OperationAdd       = "add"
	OperationPromo     = "promo"
)

// Page — контроллер страницы корзины.
type Page struct {
	mu sync.Mutex

	store     *kv.Store
	catalog   domain.ProductCatalog
	publisher domain.ChangePublisher
	promos    domain.PromoCatalog
	gens      catalog.Generations

	cart       domain.Cart
	products   []domain.Product
	promoInput string

	logger  *log.Entry
	metrics *metrics.CartMetrics
}

// Option настраивает Page.
type Option func(*Page)

// WithPromoCatalog заменяет каталог промокодов по умолчанию.
func WithPromoCatalog(promos domain.PromoCatalog) Option {
	return func(p *Page) {
		p.promos = promos
	}
}

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(p *Page) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics подключает метрики.
func WithMetrics(m *metrics.CartMetrics) Option {
	return func(p *Page) {
		p.metrics = m
	}
}

// NewPage создаёт контроллер с пустой корзиной. publisher может быть nil.
func NewPage(store *kv.Store, products domain.ProductCatalog, publisher domain.ChangePublisher, opts ...Option) *Page {
	p := &Page{
		store:     store,
		catalog:   products,
		publisher: publisher,
		promos:    domain.DefaultPromoCatalog(),
		cart:      domain.NewCart(),
		products:  []domain.Product{},
		logger:    log.WithField("component", "cart-page"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mount читает корзину из хранилища и загружает её товары.
//
// Каждый вызов начинает новое поколение загрузки; ответ каталога,
// пришедший после начала более нового поколения, отбрасывается.
// Ошибка загрузки оставляет список товаров пустым.
func (p *Page) Mount(ctx context.Context) {
	p.mu.Lock()
	cart, ok := kv.Get[domain.Cart](ctx, p.store, kv.StorageKey)
	if !ok {
		cart = domain.NewCart()
	}
	p.cart = cart.Sanitize(p.promos)
	gen := p.gens.Next()
	ids := p.cart.ProductIDs()
	if len(ids) == 0 || p.catalog == nil {
		p.products = []domain.Product{}
		p.mu.Unlock()
		p.metrics.RecordFetchBatch(metrics.ResultSkipped, 0)
		return
	}
	p.mu.Unlock()

	fetched, err := p.catalog.FetchAll(ctx, ids)

	p.mu.Lock()
	defer p.mu.Unlock()

	if staleErr := p.gens.Check(gen); staleErr != nil {
		p.metrics.RecordStaleFetch()
		p.logger.WithError(staleErr).Debug("discarding stale product batch")
		return
	}
	if err != nil {
		entry := p.logger.WithError(err)
		if domain.IsCatalogFailure(err) {
			entry.Warn("product batch failed, showing empty list")
		} else {
			entry.Debug("product batch interrupted, showing empty list")
		}
		p.products = []domain.Product{}
		return
	}

	// Пока шла загрузка, товар могли удалить из корзины.
	displayed := make([]domain.Product, 0, len(fetched))
	for _, product := range fetched {
		if p.cart.Contains(product.ID) {
			displayed = append(displayed, product)
		}
	}
	p.products = displayed
}

// Resync повторяет Mount; вызывается, когда корзину изменил другой инстанс.
func (p *Page) Resync(ctx context.Context) {
	p.Mount(ctx)
}

// IncrementProduct увеличивает количество на единицу в пределах остатка
// отображаемого товара. Неотображаемый товар не меняется.
func (p *Page) IncrementProduct(ctx context.Context, productID int64) bool {
	p.mu.Lock()
	changed := false
	for _, product := range p.products {
		if product.ID != productID {
			continue
		}
		var next domain.Cart
		next, changed = p.cart.IncrementLineItem(productID, product.Stock)
		if changed {
			p.commit(ctx, next)
		}
		break
	}
	p.mu.Unlock()

	p.finish(OperationIncrement, productID, changed)
	return changed
}

// DecrementProduct уменьшает количество; позиция с количеством 1 удаляется
// из корзины и из списка отображаемых товаров.
func (p *Page) DecrementProduct(ctx context.Context, productID int64) bool {
	p.mu.Lock()
	next, changed, removed := p.cart.DecrementOrRemoveLineItem(productID)
	if changed {
		p.commit(ctx, next)
	}
	if removed {
		p.products = domain.RemoveProduct(p.products, productID)
	}
	p.mu.Unlock()

	p.finish(OperationDecrement, productID, changed)
	return changed
}

// AddProduct кладёт товар в корзину с количеством 1. Товар появится
// в списке после следующего Mount.
func (p *Page) AddProduct(ctx context.Context, productID int64) (bool, error) {
	if productID <= 0 {
		return false, domain.ErrInvalidProductID
	}

	p.mu.Lock()
	next, changed := p.cart.AddProduct(productID)
	if changed {
		p.commit(ctx, next)
	}
	p.mu.Unlock()

	p.finish(OperationAdd, productID, changed)
	return changed, nil
}

// SetPromoInput сохраняет текущее значение поля промокода.
func (p *Page) SetPromoInput(value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.promoInput = value
}

// PromoInput возвращает текущее значение поля промокода.
func (p *Page) PromoInput() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.promoInput
}

// SubmitPromo применяет введённый промокод. Поле очищается только при
// успешном применении; неизвестный или повторный код ничего не меняет.
func (p *Page) SubmitPromo(ctx context.Context) domain.PromoOutcome {
	p.mu.Lock()
	next, outcome := p.cart.ApplyPromoCode(p.promos, p.promoInput)
	changed := outcome == domain.PromoApplied
	if changed {
		p.commit(ctx, next)
		p.promoInput = ""
	}
	p.mu.Unlock()

	p.metrics.RecordPromoSubmission(string(outcome))
	p.finish(OperationPromo, 0, changed)
	return outcome
}

// Cart возвращает копию текущей корзины.
func (p *Page) Cart() domain.Cart {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cart.Clone()
}

// Products возвращает копию списка отображаемых товаров.
func (p *Page) Products() []domain.Product {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Product, len(p.products))
	copy(out, p.products)
	return out
}

// Summary пересчитывает итоги по текущему состоянию.
func (p *Page) Summary() domain.Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return domain.Summarize(p.cart, p.products)
}

// commit заменяет корзину и записывает её в хранилище. Вызывается под p.mu.
func (p *Page) commit(ctx context.Context, next domain.Cart) {
	p.cart = next
	kv.Set(ctx, p.store, kv.StorageKey, next)
}

// finish пишет метрики и уведомляет подписчиков. Вызывается без p.mu.
func (p *Page) finish(operation string, productID int64, changed bool) {
	p.metrics.RecordMutation(operation, changed)
	if !changed {
		return
	}
	p.logger.WithFields(log.Fields{
		"operation":  operation,
		"product_id": productID,
	}).Debug("cart changed")
	if p.publisher != nil {
		p.publisher.Publish()
	}
}
