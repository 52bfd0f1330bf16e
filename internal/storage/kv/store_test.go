package kv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/basket/internal/domain"
	"github.com/vladislavdragonenkov/basket/internal/metrics"
	"github.com/vladislavdragonenkov/basket/internal/storage/kv"
	"github.com/vladislavdragonenkov/basket/internal/storage/memory"
)

type brokenBackend struct{}

func (brokenBackend) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (brokenBackend) Set(context.Context, string, []byte) error {
	return errors.New("connection refused")
}

func (brokenBackend) Delete(context.Context, string) error {
	return errors.New("connection refused")
}

func (brokenBackend) Ping(context.Context) error {
	return errors.New("connection refused")
}

func storageErrors(t *testing.T, reg *prometheus.Registry, operation string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "basket_storage_errors_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "operation" && label.GetValue() == operation {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestStore_CartRoundTrip(t *testing.T) {
	backend := memory.NewKeyValueStore()
	store := kv.NewStore(backend, "storefront")
	ctx := context.Background()

	cart := domain.Cart{
		LineItems:    []domain.LineItem{{ProductID: 1, Quantity: 2}, {ProductID: 7, Quantity: 1}},
		AppliedPromo: []domain.PromoCode{{Code: "RS", Description: "Rolling Scopes School", DiscountPercent: 10}},
	}
	require.True(t, kv.Set(ctx, store, kv.StorageKey, cart))

	loaded, ok := kv.Get[domain.Cart](ctx, store, kv.StorageKey)
	require.True(t, ok)
	require.Equal(t, cart, loaded)

	raw, err := backend.Get(ctx, "storefront:basket")
	require.NoError(t, err)
	require.JSONEq(t, `{"products":[{"id":1,"quantity":2},{"id":7,"quantity":1}],"promo":[{"code":"RS","description":"Rolling Scopes School","discount":10}]}`, string(raw))
}

func TestStore_MissingKeyIsAbsent(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := kv.NewStore(memory.NewKeyValueStore(), "storefront", kv.WithMetrics(metrics.NewCartMetricsWithRegisterer(reg)))

	_, ok := kv.Get[domain.Cart](context.Background(), store, kv.StorageKey)
	require.False(t, ok)
	require.Zero(t, storageErrors(t, reg, "get"))
}

func TestStore_CorruptValueIsAbsent(t *testing.T) {
	reg := prometheus.NewRegistry()
	backend := memory.NewKeyValueStore()
	store := kv.NewStore(backend, "", kv.WithMetrics(metrics.NewCartMetricsWithRegisterer(reg)))
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "basket", []byte("{not json")))

	cart, ok := kv.Get[domain.Cart](ctx, store, kv.StorageKey)
	require.False(t, ok)
	require.Empty(t, cart.LineItems)
	require.Equal(t, float64(1), storageErrors(t, reg, "decode"))
}

func TestStore_BackendErrorsAreSwallowed(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := kv.NewStore(brokenBackend{}, "storefront", kv.WithMetrics(metrics.NewCartMetricsWithRegisterer(reg)))
	ctx := context.Background()

	_, ok := kv.Get[domain.Cart](ctx, store, kv.StorageKey)
	require.False(t, ok)
	require.False(t, kv.Set(ctx, store, kv.StorageKey, domain.NewCart()))
	store.Delete(ctx, kv.StorageKey)

	require.Equal(t, float64(1), storageErrors(t, reg, "get"))
	require.Equal(t, float64(1), storageErrors(t, reg, "set"))
	require.Equal(t, float64(1), storageErrors(t, reg, "delete"))
	require.Error(t, store.Ping(ctx))
}

func TestStore_NilBackendIsUnavailable(t *testing.T) {
	store := kv.NewStore(nil, "storefront")
	ctx := context.Background()

	_, ok := kv.Get[domain.Cart](ctx, store, kv.StorageKey)
	require.False(t, ok)
	require.False(t, kv.Set(ctx, store, kv.StorageKey, domain.NewCart()))
	require.ErrorIs(t, store.Ping(ctx), domain.ErrStorageUnavailable)
}

func TestStore_DeleteAndKey(t *testing.T) {
	store := kv.NewStore(memory.NewKeyValueStore(), "storefront", kv.WithLogger(nil))
	ctx := context.Background()

	require.Equal(t, "storefront:basket", store.Key(kv.StorageKey))
	require.Equal(t, "storefront", store.Namespace())

	require.True(t, kv.Set(ctx, store, kv.StorageKey, domain.NewCart()))
	store.Delete(ctx, kv.StorageKey)

	_, ok := kv.Get[domain.Cart](ctx, store, kv.StorageKey)
	require.False(t, ok)
}
