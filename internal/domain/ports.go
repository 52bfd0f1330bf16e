package domain

import "context"

// KeyValueStore описывает долговременное хранилище ключ-значение,
// в котором живёт авторитетная копия корзины.
type KeyValueStore interface {
	// Get возвращает значение или ErrKeyNotFound, если ключа нет.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set перезаписывает значение ключа.
	Set(ctx context.Context, key string, value []byte) error
	// Delete удаляет ключ; отсутствие ключа ошибкой не считается.
	Delete(ctx context.Context, key string) error
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
}

// ProductCatalog загружает записи товаров из внешнего каталога.
type ProductCatalog interface {
	// FetchAll загружает все товары одной пачкой; ошибка любого запроса
	// проваливает всю пачку.
	FetchAll(ctx context.Context, ids []int64) ([]Product, error)
}

// ChangePublisher рассылает уведомление «хранилище корзины изменилось» без полезной нагрузки.
type ChangePublisher interface {
	Publish()
}
