package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/basket/internal/catalog"
	"github.com/vladislavdragonenkov/basket/internal/domain"
	"github.com/vladislavdragonenkov/basket/internal/metrics"
	"github.com/vladislavdragonenkov/basket/internal/version"
)

// newCatalogServer отдаёт товары с ценой id*10; failing задаёт статусы ошибок по id.
func newCatalogServer(t *testing.T, failing map[string]int, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		id := strings.TrimPrefix(r.URL.Path, "/products/")
		if status, ok := failing[id]; ok {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"id":%s,"title":"Product %s","price":%s0,"stock":5,"rating":4.5,"discountPercentage":12.5}`, id, id, id)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchAll_PreservesOrder(t *testing.T) {
	var hits atomic.Int32
	srv := newCatalogServer(t, nil, &hits)
	client := catalog.New(srv.URL+"/products/", catalog.WithConcurrency(2))

	products, err := client.FetchAll(context.Background(), []int64{3, 1, 2, 1})
	require.NoError(t, err)
	require.Len(t, products, 3)
	require.Equal(t, int64(3), products[0].ID)
	require.Equal(t, int64(1), products[1].ID)
	require.Equal(t, int64(2), products[2].ID)
	require.True(t, decimal.NewFromInt(30).Equal(products[0].Price))
	require.Equal(t, 5, products[0].Stock)
	require.Equal(t, int32(3), hits.Load())
}

// newGatedServer держит каждый запрос, пока одновременно не соберутся
// want запросов (или не истечёт wait), и запоминает пик параллельности.
func newGatedServer(t *testing.T, want int32, wait time.Duration, peak *atomic.Int32) *httptest.Server {
	t.Helper()

	var inFlight atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			prev := peak.Load()
			if cur <= prev || peak.CompareAndSwap(prev, cur) {
				break
			}
		}

		deadline := time.Now().Add(wait)
		for peak.Load() < want && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}

		id := strings.TrimPrefix(r.URL.Path, "/products/")
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"id":%s,"title":"Product %s","price":1,"stock":5}`, id, id)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchAll_UnboundedByDefault(t *testing.T) {
	const n = 20
	var peak atomic.Int32
	srv := newGatedServer(t, n, 3*time.Second, &peak)
	client := catalog.New(srv.URL+"/products", catalog.WithTimeout(5*time.Second))

	ids := make([]int64, 0, n)
	for i := int64(1); i <= n; i++ {
		ids = append(ids, i)
	}

	products, err := client.FetchAll(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, products, n)
	require.Equal(t, int32(n), peak.Load())
}

func TestClient_FetchAll_WithConcurrencyLimit(t *testing.T) {
	var peak atomic.Int32
	srv := newGatedServer(t, 6, 50*time.Millisecond, &peak)
	client := catalog.New(srv.URL+"/products", catalog.WithConcurrency(2))

	products, err := client.FetchAll(context.Background(), []int64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.Len(t, products, 6)
	require.LessOrEqual(t, peak.Load(), int32(2))
}

func TestClient_FetchAll_AllOrNothing(t *testing.T) {
	srv := newCatalogServer(t, map[string]int{"2": http.StatusInternalServerError}, nil)
	reg := prometheus.NewRegistry()
	client := catalog.New(srv.URL+"/products", catalog.WithMetrics(metrics.NewCartMetricsWithRegisterer(reg)))

	products, err := client.FetchAll(context.Background(), []int64{1, 2, 3})
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	require.True(t, domain.IsCatalogFailure(err))
	require.Nil(t, products)
}

func TestClient_FetchAll_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) },
			wantErr: domain.ErrProductNotFound,
		},
		{
			name:    "bad gateway",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) },
			wantErr: domain.ErrCatalogUnavailable,
		},
		{
			name:    "malformed json",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("{oops")) },
			wantErr: domain.ErrMalformedProduct,
		},
		{
			name:    "id mismatch",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"id":99,"price":1,"stock":1}`)) },
			wantErr: domain.ErrMalformedProduct,
		},
		{
			name:    "negative stock",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"id":7,"price":1,"stock":-1}`)) },
			wantErr: domain.ErrMalformedProduct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := catalog.New(srv.URL).FetchAll(context.Background(), []int64{7})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_FetchAll_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := catalog.New(url).FetchAll(context.Background(), []int64{1})
	require.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestClient_FetchAll_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := catalog.New(srv.URL, catalog.WithTimeout(20*time.Millisecond), catalog.WithHTTPClient(srv.Client()))
	_, err := client.FetchAll(context.Background(), []int64{1})
	require.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestClient_FetchAll_EmptyAndInvalid(t *testing.T) {
	var hits atomic.Int32
	srv := newCatalogServer(t, nil, &hits)
	client := catalog.New(srv.URL + "/products")

	products, err := client.FetchAll(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, products)

	_, err = client.FetchAll(context.Background(), []int64{1, -4})
	require.True(t, errors.Is(err, domain.ErrInvalidProductID))
}

func TestNew_DefaultBaseURL(t *testing.T) {
	require.NotNil(t, catalog.New("  "))
}

func TestGenerations(t *testing.T) {
	var gens catalog.Generations
	require.Equal(t, catalog.Generation(0), gens.Current())

	first := gens.Next()
	require.True(t, gens.IsCurrent(first))

	second := gens.Next()
	require.False(t, gens.IsCurrent(first))
	require.True(t, gens.IsCurrent(second))
	require.Equal(t, second, gens.Current())
	require.ErrorIs(t, gens.Check(first), domain.ErrStaleGeneration)
	require.NoError(t, gens.Check(second))
}

func TestClient_SendsHeaders(t *testing.T) {
	var userAgent, accept atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent.Store(r.Header.Get("User-Agent"))
		accept.Store(r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"id":1,"title":"Product 1","price":10,"stock":1}`))
	}))
	t.Cleanup(srv.Close)

	_, err := catalog.New(srv.URL).FetchAll(context.Background(), []int64{1})
	require.NoError(t, err)
	require.Equal(t, version.UserAgent(), userAgent.Load())
	require.Equal(t, "application/json", accept.Load())
}
