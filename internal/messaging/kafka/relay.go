package kafka

import (
	"context"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// Resyncer перечитывает корзину из хранилища после изменения в другом инстансе.
type Resyncer interface {
	Resync(ctx context.Context)
}

// Broadcaster будит локальных подписчиков, не пересылая сигнал дальше.
type Broadcaster interface {
	Broadcast()
}

// RelayConfig описывает параметры ретранслятора.
type RelayConfig struct {
	Topic      string
	Namespace  string
	InstanceID string
}

// Relay связывает уведомления нескольких инстансов сервиса через Kafka.
//
// Локальные изменения уходят в топик асинхронно: Forward только ставит
// отметку, а публикацию выполняет Run. Несколько изменений подряд
// сливаются в одно событие.
type Relay struct {
	cfg         RelayConfig
	publisher   EventPublisher
	resyncer    Resyncer
	broadcaster Broadcaster
	pending     chan struct{}
	logger      *log.Entry
}

// NewRelay создает ретранслятор. resyncer и broadcaster могут быть nil.
func NewRelay(cfg RelayConfig, publisher EventPublisher, resyncer Resyncer, broadcaster Broadcaster) *Relay {
	if cfg.Topic == "" {
		cfg.Topic = TopicStorageChanged
	}
	return &Relay{
		cfg:         cfg,
		publisher:   publisher,
		resyncer:    resyncer,
		broadcaster: broadcaster,
		pending:     make(chan struct{}, 1),
		logger: log.WithFields(log.Fields{
			"component":   "kafka-relay",
			"instance_id": cfg.InstanceID,
		}),
	}
}

// Forward отмечает, что локальное хранилище изменилось. Не блокируется.
func (r *Relay) Forward() {
	select {
	case r.pending <- struct{}{}:
	default:
	}
}

// Run публикует накопленные изменения до отмены ctx.
func (r *Relay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.pending:
			r.publish()
		}
	}
}

func (r *Relay) publish() {
	if r.publisher == nil {
		return
	}
	event := NewStorageChangedEvent(r.cfg.Namespace, r.cfg.InstanceID)
	if err := r.publisher.PublishEvent(r.cfg.Topic, r.cfg.Namespace, event); err != nil {
		r.logger.WithError(err).Warn("failed to relay storage change")
	}
}

// HandleMessage обрабатывает событие другого инстанса: перечитывает корзину
// и будит локальных подписчиков. Свои события и чужие namespace игнорируются.
func (r *Relay) HandleMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	event, err := ParseStorageChangedEvent(message)
	if err != nil {
		return err
	}
	if event.InstanceID == r.cfg.InstanceID || event.Namespace != r.cfg.Namespace {
		return nil
	}

	r.logger.WithField("origin", event.InstanceID).Debug("storage changed in another instance")
	if r.resyncer != nil {
		r.resyncer.Resync(ctx)
	}
	if r.broadcaster != nil {
		r.broadcaster.Broadcast()
	}
	return nil
}
