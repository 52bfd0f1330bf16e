package domain

import "github.com/shopspring/decimal"

const maxDiscountPercent = 100

// Summary — производные значения итогов корзины, пересчитываются при каждом показе.
type Summary struct {
	ItemCount       int             `json:"item_count"`
	Total           decimal.Decimal `json:"total"`
	Discount        decimal.Decimal `json:"discount"`
	DiscountedTotal decimal.Decimal `json:"discounted_total"`
	PromoCodes      []string        `json:"promo_codes"`
}

// Summarize считает итоги: количество по всем позициям, сумму только по загруженным товарам.
// Позиции без загруженного товара вносят ноль в сумму и не считаются ошибкой.
func Summarize(cart Cart, products []Product) Summary {
	loaded := IndexProducts(products)

	total := decimal.Zero
	for _, item := range cart.LineItems {
		product, ok := loaded[item.ProductID]
		if !ok {
			continue
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	percent := 0
	codes := make([]string, 0, len(cart.AppliedPromo))
	for _, promo := range cart.AppliedPromo {
		percent += promo.DiscountPercent
		codes = append(codes, promo.Code)
	}
	if percent > maxDiscountPercent {
		percent = maxDiscountPercent
	}
	if percent < 0 {
		percent = 0
	}

	discount := total.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100)).Round(2)

	return Summary{
		ItemCount:       cart.ItemCount(),
		Total:           total,
		Discount:        discount,
		DiscountedTotal: total.Sub(discount),
		PromoCodes:      codes,
	}
}
