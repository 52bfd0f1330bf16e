// Package catalog загружает записи товаров из внешнего HTTP-каталога.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/basket/internal/domain"
	"github.com/vladislavdragonenkov/basket/internal/metrics"
	"github.com/vladislavdragonenkov/basket/internal/version"
)

const (
	// DefaultBaseURL — публичный каталог витрины.
	DefaultBaseURL = "https://dummyjson.com/products"

	defaultTimeout = 5 * time.Second
	maxBodyBytes   = 1 << 20
)

// Client загружает товары по одному запросу на идентификатор.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	concurrency int
	logger      *log.Entry
	metrics     *metrics.CartMetrics
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет HTTP-клиент (например, в тестах).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout задаёт таймаут одного запроса.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithConcurrency ограничивает число одновременных запросов.
// Без этой опции все запросы пачки уходят сразу.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics подключает метрики загрузки.
func WithMetrics(m *metrics.CartMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New создаёт клиента. Пустой baseURL заменяется на DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		timeout:    defaultTimeout,
		logger:     log.WithField("component", "catalog"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAll загружает товары по различным идентификаторам из ids, сохраняя
// порядок первого появления. Ошибка любого запроса проваливает всю пачку:
// остальные запросы отменяются, частичный результат не возвращается.
func (c *Client) FetchAll(ctx context.Context, ids []int64) ([]domain.Product, error) {
	distinct := distinctIDs(ids)
	if len(distinct) == 0 {
		c.metrics.RecordFetchBatch(metrics.ResultSkipped, 0)
		return []domain.Product{}, nil
	}

	started := time.Now()
	products := make([]domain.Product, len(distinct))

	g, gctx := errgroup.WithContext(ctx)
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}
	for i, id := range distinct {
		g.Go(func() error {
			product, err := c.fetchOne(gctx, id)
			if err != nil {
				return err
			}
			products[i] = product
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.metrics.RecordFetchBatch(metrics.ResultFailure, time.Since(started))
		c.logger.WithError(err).WithField("products", len(distinct)).Warn("product batch fetch failed")
		return nil, err
	}

	c.metrics.RecordFetchBatch(metrics.ResultSuccess, time.Since(started))
	c.logger.WithField("products", len(distinct)).Debug("product batch fetched")
	return products, nil
}

func (c *Client) fetchOne(ctx context.Context, id int64) (domain.Product, error) {
	if id <= 0 {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, domain.ErrInvalidProductID)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + "/" + strconv.FormatInt(id, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.Product{}, fmt.Errorf("create request for product %d: %w: %w", id, domain.ErrCatalogUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Product{}, fmt.Errorf("fetch product %d: %w: %w", id, domain.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.Product{}, fmt.Errorf("product %d: %w", id, domain.ErrProductNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return domain.Product{}, fmt.Errorf("fetch product %d: status %d: %w", id, resp.StatusCode, domain.ErrCatalogUnavailable)
	}

	var product domain.Product
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&product); err != nil {
		return domain.Product{}, fmt.Errorf("decode product %d: %w: %w", id, domain.ErrMalformedProduct, err)
	}
	if product.ID != id {
		return domain.Product{}, fmt.Errorf("product %d: catalog returned id %d: %w", id, product.ID, domain.ErrMalformedProduct)
	}
	if err := product.Validate(); err != nil {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, err)
	}
	return product, nil
}

func distinctIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var _ domain.ProductCatalog = (*Client)(nil)
