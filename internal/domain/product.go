package domain

import "github.com/shopspring/decimal"

// Product — запись внешнего каталога товаров, используемая только для отображения
// и расчёта суммы. Никогда не сохраняется в хранилище корзины.
type Product struct {
	ID                 int64           `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description,omitempty"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	Rating             decimal.Decimal `json:"rating"`
	Stock              int             `json:"stock"`
	Brand              string          `json:"brand,omitempty"`
	Category           string          `json:"category,omitempty"`
	Thumbnail          string          `json:"thumbnail,omitempty"`
}

// Validate проверяет, что запись каталога пригодна для отображения.
func (p Product) Validate() error {
	if p.ID <= 0 {
		return ErrMalformedProduct
	}
	if p.Price.IsNegative() || p.Stock < 0 {
		return ErrMalformedProduct
	}
	return nil
}

// IndexProducts строит индекс товаров по идентификатору.
func IndexProducts(products []Product) map[int64]Product {
	index := make(map[int64]Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return index
}

// RemoveProduct возвращает новый список без товара productID.
func RemoveProduct(products []Product, productID int64) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.ID != productID {
			out = append(out, p)
		}
	}
	return out
}
