package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Значения label result.
const (
	ResultChanged   = "changed"
	ResultUnchanged = "unchanged"
	ResultSuccess   = "success"
	ResultFailure   = "failure"
	ResultSkipped   = "skipped"
)

// CartMetrics содержит метрики страницы корзины.
// Все методы безопасно вызывать на nil-получателе: метрики тогда не пишутся.
type CartMetrics struct {
	// Мутации корзины по операциям
	mutations *prometheus.CounterVec
	promo     *prometheus.CounterVec

	// Загрузка каталога
	fetchBatches  *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	staleFetches  prometheus.Counter

	// Хранилище и уведомления
	storageErrors *prometheus.CounterVec
	notifications prometheus.Counter
}

// NewCartMetrics создаёт метрики в глобальном реестре Prometheus.
func NewCartMetrics() *CartMetrics {
	return NewCartMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCartMetricsWithRegisterer создаёт метрики в переданном реестре (удобно для тестов).
func NewCartMetricsWithRegisterer(registerer prometheus.Registerer) *CartMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CartMetrics{
		mutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "basket_cart_mutations_total",
			Help: "Total number of cart mutations grouped by operation and result",
		}, []string{"operation", "result"}),
		promo: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "basket_promo_submissions_total",
			Help: "Total number of promo code submissions grouped by outcome",
		}, []string{"result"}),
		fetchBatches: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "basket_catalog_fetch_batches_total",
			Help: "Total number of product enrichment batches grouped by result",
		}, []string{"result"}),
		fetchDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "basket_catalog_fetch_duration_seconds",
			Help:    "Duration of product enrichment batches in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		staleFetches: registerCounter(registerer, prometheus.CounterOpts{
			Name: "basket_catalog_stale_responses_total",
			Help: "Total number of enrichment responses discarded as superseded",
		}),
		storageErrors: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "basket_storage_errors_total",
			Help: "Total number of swallowed storage errors grouped by operation",
		}, []string{"operation"}),
		notifications: registerCounter(registerer, prometheus.CounterOpts{
			Name: "basket_notifications_total",
			Help: "Total number of storage-changed notifications broadcast",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordMutation учитывает мутацию корзины.
func (m *CartMetrics) RecordMutation(operation string, changed bool) {
	if m == nil {
		return
	}
	result := ResultUnchanged
	if changed {
		result = ResultChanged
	}
	m.mutations.WithLabelValues(operation, result).Inc()
}

// RecordPromoSubmission учитывает отправку промокода с её исходом.
func (m *CartMetrics) RecordPromoSubmission(outcome string) {
	if m == nil {
		return
	}
	m.promo.WithLabelValues(outcome).Inc()
}

// RecordFetchBatch учитывает завершённую пачку загрузки каталога.
func (m *CartMetrics) RecordFetchBatch(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.fetchBatches.WithLabelValues(result).Inc()
	if result != ResultSkipped {
		m.fetchDuration.Observe(duration.Seconds())
	}
}

// RecordStaleFetch учитывает отброшенный устаревший ответ каталога.
func (m *CartMetrics) RecordStaleFetch() {
	if m == nil {
		return
	}
	m.staleFetches.Inc()
}

// RecordStorageError учитывает проглоченную ошибку хранилища.
func (m *CartMetrics) RecordStorageError(operation string) {
	if m == nil {
		return
	}
	m.storageErrors.WithLabelValues(operation).Inc()
}

// RecordNotification учитывает разосланное уведомление.
func (m *CartMetrics) RecordNotification() {
	if m == nil {
		return
	}
	m.notifications.Inc()
}
