package domain

// LineItem представляет одну позицию корзины: товар и его количество.
type LineItem struct {
	// ProductID — идентификатор товара во внешнем каталоге.
	ProductID int64 `json:"id"`
	// Quantity — количество единиц, всегда >= 1 для присутствующей позиции.
	Quantity int `json:"quantity"`
}

// Cart агрегирует позиции корзины и применённые промокоды.
//
// Все операции над корзиной возвращают новое значение и не изменяют
// получателя: срезы результата никогда не разделяются с исходной корзиной.
type Cart struct {
	LineItems    []LineItem  `json:"products"`
	AppliedPromo []PromoCode `json:"promo"`
}

// PromoOutcome описывает результат попытки применить промокод.
type PromoOutcome string

const (
	// PromoApplied — код найден в каталоге и добавлен в корзину.
	PromoApplied PromoOutcome = "applied"
	// PromoUnknown — кода нет в каталоге, корзина не изменилась.
	PromoUnknown PromoOutcome = "unknown"
	// PromoAlreadyApplied — код уже применён, повторное применение игнорируется.
	PromoAlreadyApplied PromoOutcome = "already_applied"
)

// NewCart возвращает пустую корзину.
func NewCart() Cart {
	return Cart{
		LineItems:    []LineItem{},
		AppliedPromo: []PromoCode{},
	}
}

// Clone возвращает глубокую копию корзины.
func (c Cart) Clone() Cart {
	items := make([]LineItem, len(c.LineItems))
	copy(items, c.LineItems)
	promo := make([]PromoCode, len(c.AppliedPromo))
	copy(promo, c.AppliedPromo)
	return Cart{LineItems: items, AppliedPromo: promo}
}

// IsEmpty сообщает, что в корзине нет ни одной позиции.
func (c Cart) IsEmpty() bool {
	return len(c.LineItems) == 0
}

// indexOf возвращает позицию товара в корзине или -1.
func (c Cart) indexOf(productID int64) int {
	for i, item := range c.LineItems {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// Quantity возвращает количество товара в корзине (0, если его нет).
func (c Cart) Quantity(productID int64) int {
	if idx := c.indexOf(productID); idx >= 0 {
		return c.LineItems[idx].Quantity
	}
	return 0
}

// Contains сообщает, есть ли товар в корзине.
func (c Cart) Contains(productID int64) bool {
	return c.indexOf(productID) >= 0
}

// ProductIDs возвращает идентификаторы товаров в порядке позиций.
func (c Cart) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c.LineItems))
	for _, item := range c.LineItems {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// ItemCount — сумма количеств по всем позициям, независимо от того,
// загрузился ли товар из каталога.
func (c Cart) ItemCount() int {
	total := 0
	for _, item := range c.LineItems {
		total += item.Quantity
	}
	return total
}

// HasPromo сообщает, применён ли уже код (сравнение без учёта регистра).
func (c Cart) HasPromo(code string) bool {
	normalized := NormalizePromoCode(code)
	for _, promo := range c.AppliedPromo {
		if NormalizePromoCode(promo.Code) == normalized {
			return true
		}
	}
	return false
}

// IncrementLineItem увеличивает количество товара на единицу, не превышая stockLimit.
// Отсутствующий товар и достигнутый лимит не меняют корзину.
func (c Cart) IncrementLineItem(productID int64, stockLimit int) (Cart, bool) {
	idx := c.indexOf(productID)
	if idx < 0 || c.LineItems[idx].Quantity >= stockLimit {
		return c.Clone(), false
	}

	next := c.Clone()
	next.LineItems[idx].Quantity++
	return next, true
}

// DecrementOrRemoveLineItem уменьшает количество на единицу;
// позиция с количеством 1 удаляется целиком.
func (c Cart) DecrementOrRemoveLineItem(productID int64) (next Cart, changed, removed bool) {
	idx := c.indexOf(productID)
	if idx < 0 {
		return c.Clone(), false, false
	}

	next = c.Clone()
	if next.LineItems[idx].Quantity > 1 {
		next.LineItems[idx].Quantity--
		return next, true, false
	}

	next.LineItems = append(next.LineItems[:idx], next.LineItems[idx+1:]...)
	return next, true, true
}

// AddProduct добавляет новый товар с количеством 1. Уже присутствующий товар не меняется.
func (c Cart) AddProduct(productID int64) (Cart, bool) {
	if productID <= 0 || c.Contains(productID) {
		return c.Clone(), false
	}

	next := c.Clone()
	next.LineItems = append(next.LineItems, LineItem{ProductID: productID, Quantity: 1})
	return next, true
}

// ApplyPromoCode применяет код из каталога. Неизвестный или уже применённый код
// оставляет корзину без изменений.
func (c Cart) ApplyPromoCode(catalog PromoCatalog, rawCode string) (Cart, PromoOutcome) {
	promo, ok := catalog.Lookup(rawCode)
	if !ok {
		return c.Clone(), PromoUnknown
	}
	if c.HasPromo(promo.Code) {
		return c.Clone(), PromoAlreadyApplied
	}

	next := c.Clone()
	next.AppliedPromo = append(next.AppliedPromo, promo)
	return next, PromoApplied
}

// Sanitize приводит загруженную из хранилища корзину к инвариантам:
// уникальные товары, количество >= 1, только известные и неповторяющиеся промокоды.
func (c Cart) Sanitize(catalog PromoCatalog) Cart {
	result := NewCart()

	seen := make(map[int64]struct{}, len(c.LineItems))
	for _, item := range c.LineItems {
		if item.ProductID <= 0 || item.Quantity < 1 {
			continue
		}
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		result.LineItems = append(result.LineItems, item)
	}

	for _, applied := range c.AppliedPromo {
		promo, ok := catalog.Lookup(applied.Code)
		if !ok || result.HasPromo(promo.Code) {
			continue
		}
		result.AppliedPromo = append(result.AppliedPromo, promo)
	}

	return result
}
