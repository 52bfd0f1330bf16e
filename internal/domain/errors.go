package domain

import "errors"

var (
	// ErrKeyNotFound возвращается бэкендом хранилища, если ключ отсутствует.
	ErrKeyNotFound = errors.New("storage key not found")
	// ErrStorageUnavailable — хранилище не настроено или недоступно.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrInvalidProductID — идентификатор товара не положительный или не число.
	ErrInvalidProductID = errors.New("product id must be a positive integer")
	// ErrProductNotFound — каталог не знает такого товара.
	ErrProductNotFound = errors.New("product not found in catalog")
	// ErrCatalogUnavailable — сетевая ошибка или неожиданный статус каталога.
	ErrCatalogUnavailable = errors.New("product catalog unavailable")
	// ErrMalformedProduct — каталог вернул данные, непригодные для отображения.
	ErrMalformedProduct = errors.New("malformed product record")
	// ErrStaleGeneration — ответ каталога относится к устаревшему поколению загрузки.
	ErrStaleGeneration = errors.New("stale fetch generation")
)

// IsNotFound проверяет, означает ли ошибка отсутствие ключа в хранилище.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// IsCatalogFailure проверяет, относится ли ошибка к сбою загрузки каталога.
func IsCatalogFailure(err error) bool {
	return errors.Is(err, ErrCatalogUnavailable) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrMalformedProduct)
}
