package app

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/basket/internal/messaging/kafka"
)

// kafkaRuntime — ретранслятор уведомлений между инстансами.
type kafkaRuntime struct {
	brokers    []string
	instanceID string
	producer   *kafka.Producer
	consumer   *kafka.Consumer
	relay      *kafka.Relay
}

// newKafkaRuntime подменяется в тестах.
var newKafkaRuntime = initKafkaRelay

// initKafkaRelay подключает ретранслятор, если заданы брокеры.
// Возвращает nil, nil, когда Kafka не настроена.
func initKafkaRelay(cfg Config, deps *Dependencies, logger *log.Entry) (*kafkaRuntime, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		return nil, err
	}

	instanceID := uuid.NewString()
	relay := kafka.NewRelay(kafka.RelayConfig{
		Topic:      cfg.KafkaTopic,
		Namespace:  deps.Store.Namespace(),
		InstanceID: instanceID,
	}, producer, deps.Page, deps.Broker)

	// Каждый инстанс должен видеть все события, поэтому группа у него своя.
	group := fmt.Sprintf("%s-%s", cfg.KafkaGroup, instanceID)
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, group, []string{cfg.KafkaTopic}, relay.HandleMessage)
	if err != nil {
		_ = producer.Close()
		return nil, err
	}

	deps.Broker.AddForwarder(relay)
	logger.WithFields(log.Fields{
		"brokers":     cfg.KafkaBrokers,
		"topic":       cfg.KafkaTopic,
		"instance_id": instanceID,
	}).Info("kafka relay initialized")

	return &kafkaRuntime{
		brokers:    cfg.KafkaBrokers,
		instanceID: instanceID,
		producer:   producer,
		consumer:   consumer,
		relay:      relay,
	}, nil
}

func (k *kafkaRuntime) start(ctx context.Context) error {
	if k == nil {
		return nil
	}
	go k.relay.Run(ctx)
	return k.consumer.Start(ctx)
}

// close останавливает consumer и producer.
func (k *kafkaRuntime) close(logger *log.Entry) {
	if k == nil {
		return
	}
	if k.consumer != nil {
		if err := k.consumer.Stop(); err != nil {
			logger.WithError(err).Warn("failed to stop kafka consumer")
		}
	}
	if k.producer == nil {
		return
	}
	if err := k.producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}

// check проверяет, что хотя бы один брокер принимает соединения.
func (k *kafkaRuntime) check(ctx context.Context) error {
	var dialer net.Dialer
	var errs []error
	for _, broker := range k.brokers {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		_ = conn.Close()
		return nil
	}
	return fmt.Errorf("kafka brokers unreachable: %w", errors.Join(errs...))
}
