package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/basket/internal/catalog"
	"github.com/vladislavdragonenkov/basket/internal/messaging/kafka"
)

// StorageDriver выбирает бэкенд хранилища корзины.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverRedis    StorageDriver = "redis"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска сервиса корзины.
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	MetricsAddr string

	StorageDriver       StorageDriver
	StorageNamespace    string
	RedisURL            string
	PostgresDSN         string
	PostgresAutoMigrate bool

	CatalogBaseURL string
	CatalogTimeout time.Duration

	// KafkaBrokers пуст — ретрансляция между инстансами выключена.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroup   string

	ShutdownTimeout time.Duration
}

// DefaultConfig возвращает конфигурацию для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		StorageNamespace:    "storefront",
		PostgresAutoMigrate: true,
		CatalogBaseURL:      catalog.DefaultBaseURL,
		CatalogTimeout:      5 * time.Second,
		KafkaTopic:          kafka.TopicStorageChanged,
		KafkaGroup:          "basket-service",
		ShutdownTimeout:     5 * time.Second,
	}
}

// Validate проверяет согласованность настроек хранилища.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("redis storage driver requires redis url")
		}
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("postgres storage driver requires dsn")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("http address is required")
	}
	return nil
}

// ParseBrokers разбирает список брокеров через запятую, пропуская пустые элементы.
func ParseBrokers(raw string) []string {
	var brokers []string
	for _, broker := range strings.Split(raw, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}
