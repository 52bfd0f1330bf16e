package cartpage

import "github.com/vladislavdragonenkov/basket/internal/domain"

const (
	// DefaultLimit — товаров на странице по умолчанию.
	DefaultLimit = 3
	// DefaultPageNumber — номер страницы по умолчанию.
	DefaultPageNumber = 1
)

// ViewItem — строка списка: товар, его количество в корзине и сквозной номер.
type ViewItem struct {
	Position int            `json:"position"`
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// View — снимок страницы корзины для отображения.
type View struct {
	Items        []ViewItem         `json:"items"`
	Page         int                `json:"page"`
	Limit        int                `json:"limit"`
	Pages        int                `json:"pages"`
	Total        int                `json:"total"`
	Summary      domain.Summary     `json:"summary"`
	PromoInput   string             `json:"promo_input"`
	AppliedPromo []domain.PromoCode `json:"applied_promo"`
}

// View возвращает одну страницу отображаемых товаров. Неположительные
// limit и page заменяются значениями по умолчанию, page ограничивается
// диапазоном [1, pages].
func (p *Page) View(limit, page int) View {
	p.mu.Lock()
	defer p.mu.Unlock()

	if limit <= 0 {
		limit = DefaultLimit
	}
	if page <= 0 {
		page = DefaultPageNumber
	}

	total := len(p.products)
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * limit
	end := min(start+limit, total)

	items := make([]ViewItem, 0, end-start)
	for i := start; i < end; i++ {
		product := p.products[i]
		items = append(items, ViewItem{
			Position: i + 1,
			Product:  product,
			Quantity: p.cart.Quantity(product.ID),
		})
	}

	applied := make([]domain.PromoCode, len(p.cart.AppliedPromo))
	copy(applied, p.cart.AppliedPromo)

	return View{
		Items:        items,
		Page:         page,
		Limit:        limit,
		Pages:        pages,
		Total:        total,
		Summary:      domain.Summarize(p.cart, p.products),
		PromoInput:   p.promoInput,
		AppliedPromo: applied,
	}
}
