package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/basket/internal/app"
	"github.com/vladislavdragonenkov/basket/internal/version"
)

const (
	envLogLevel            = "CART_LOG_LEVEL"
	envHTTPAddr            = "CART_HTTP_ADDR"
	envGRPCAddr            = "CART_GRPC_ADDR"
	envMetricsAddr         = "CART_METRICS_ADDR"
	envStorageDriver       = "CART_STORAGE_DRIVER"
	envStorageNamespace    = "CART_STORAGE_NAMESPACE"
	envRedisURL            = "CART_REDIS_URL"
	envPostgresDSN         = "CART_POSTGRES_DSN"
	envPostgresAutoMigrate = "CART_POSTGRES_AUTO_MIGRATE"
	envCatalogURL          = "CART_CATALOG_BASE_URL"
	envCatalogTimeout      = "CART_CATALOG_TIMEOUT"
	envShutdownTimeout     = "CART_SHUTDOWN_TIMEOUT"
	envKafkaBrokers        = "KAFKA_BROKERS"
	envKafkaTopic          = "CART_KAFKA_TOPIC"
	envKafkaGroup          = "CART_KAFKA_GROUP"
)

type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(lookup envLookup) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	raw, ok := lookup(envLogLevel)
	if !ok || strings.TrimSpace(raw) == "" {
		return
	}
	level, err := log.ParseLevel(strings.TrimSpace(raw))
	if err != nil {
		log.WithError(err).Warnf("некорректный %s, используем info", envLogLevel)
		return
	}
	log.SetLevel(level)
	if level >= log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	}
}

// readConfigFromEnv формирует конфигурацию из переменных окружения.
// Некорректные значения не роняют сервис: остаётся значение по умолчанию и возвращается предупреждение.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str(envHTTPAddr, &cfg.HTTPAddr)
	str(envGRPCAddr, &cfg.GRPCAddr)
	str(envMetricsAddr, &cfg.MetricsAddr)
	str(envStorageNamespace, &cfg.StorageNamespace)
	str(envRedisURL, &cfg.RedisURL)
	str(envPostgresDSN, &cfg.PostgresDSN)
	str(envCatalogURL, &cfg.CatalogBaseURL)
	str(envKafkaTopic, &cfg.KafkaTopic)
	str(envKafkaGroup, &cfg.KafkaGroup)

	if v, ok := lookup(envStorageDriver); ok && strings.TrimSpace(v) != "" {
		cfg.StorageDriver = app.StorageDriver(strings.ToLower(strings.TrimSpace(v)))
	}
	if v, ok := lookup(envKafkaBrokers); ok {
		cfg.KafkaBrokers = app.ParseBrokers(v)
	}

	if v, ok := lookup(envPostgresAutoMigrate); ok && strings.TrimSpace(v) != "" {
		parsed, err := parseBool(v)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envPostgresAutoMigrate, err))
		} else {
			cfg.PostgresAutoMigrate = parsed
		}
	}

	positive := func(d time.Duration) bool { return d > 0 }
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{key: envCatalogTimeout, dst: &cfg.CatalogTimeout},
		{key: envShutdownTimeout, dst: &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		parsed, err := parseDuration(v, positive, "must be > 0")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", d.key, err))
			continue
		}
		*d.dst = parsed
	}

	return cfg, warnings
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value %q", raw)
	}
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if !valid(value) {
		return 0, fmt.Errorf("invalid duration %s: %s", value, rule)
	}
	return value, nil
}

func main() {
	// .env опционален: в контейнере переменные приходят из окружения.
	_ = godotenv.Load()

	gin.SetMode(gin.ReleaseMode)
	setupLogger(os.LookupEnv)

	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, warning := range warnings {
		log.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(version.Fields()).WithFields(log.Fields{
		"http_addr":      cfg.HTTPAddr,
		"grpc_addr":      cfg.GRPCAddr,
		"metrics_addr":   cfg.MetricsAddr,
		"storage_driver": cfg.StorageDriver,
		"kafka_enabled":  len(cfg.KafkaBrokers) > 0,
	}).Info("запускаем сервис корзины")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("сервис корзины остановлен")
}
