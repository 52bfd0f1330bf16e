package domain

import "strings"

// PromoCode — скидочный код из фиксированного каталога.
type PromoCode struct {
	Code            string `json:"code"`
	Description     string `json:"description,omitempty"`
	DiscountPercent int    `json:"discount"`
}

// PromoCatalog — неизменяемый список допустимых промокодов.
type PromoCatalog struct {
	codes []PromoCode
}

// NewPromoCatalog строит каталог; коды приводятся к нормализованному виду,
// повторы и пустые коды отбрасываются.
func NewPromoCatalog(codes ...PromoCode) PromoCatalog {
	result := make([]PromoCode, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, promo := range codes {
		if strings.TrimSpace(promo.Code) == "" {
			continue
		}
		promo.Code = NormalizePromoCode(promo.Code)
		if _, dup := seen[promo.Code]; dup {
			continue
		}
		seen[promo.Code] = struct{}{}
		result = append(result, promo)
	}
	return PromoCatalog{codes: result}
}

// DefaultPromoCatalog возвращает каталог витрины по умолчанию.
func DefaultPromoCatalog() PromoCatalog {
	return NewPromoCatalog(
		PromoCode{Code: "RS", Description: "Rolling Scopes School", DiscountPercent: 10},
		PromoCode{Code: "EPM", Description: "EPAM Systems", DiscountPercent: 10},
	)
}

// NormalizePromoCode приводит ввод пользователя к виду, в котором коды хранятся в каталоге.
// Пробелы не обрезаются: " rs " не совпадает с RS.
func NormalizePromoCode(raw string) string {
	return strings.ToUpper(raw)
}

// Lookup ищет код без учёта регистра.
func (c PromoCatalog) Lookup(raw string) (PromoCode, bool) {
	code := NormalizePromoCode(raw)
	if code == "" {
		return PromoCode{}, false
	}
	for _, promo := range c.codes {
		if promo.Code == code {
			return promo, true
		}
	}
	return PromoCode{}, false
}

// Codes возвращает копию списка кодов каталога.
func (c PromoCatalog) Codes() []PromoCode {
	out := make([]PromoCode, len(c.codes))
	copy(out, c.codes)
	return out
}
