package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// EventType определяет тип события
type EventType string

const (
	// EventTypeStorageChanged — корзина в хранилище изменилась.
	EventTypeStorageChanged EventType = "storage.changed"
)

// TopicStorageChanged — топик по умолчанию для уведомлений об изменении корзины.
const TopicStorageChanged = "basket.storage.changed"

// StorageChangedEvent — уведомление без содержимого корзины: получатель
// сам перечитывает хранилище.
type StorageChangedEvent struct {
	EventType  EventType `json:"event_type"`
	Namespace  string    `json:"namespace"`
	InstanceID string    `json:"instance_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewStorageChangedEvent создает событие от имени инстанса instanceID.
func NewStorageChangedEvent(namespace, instanceID string) *StorageChangedEvent {
	return &StorageChangedEvent{
		EventType:  EventTypeStorageChanged,
		Namespace:  namespace,
		InstanceID: instanceID,
		Timestamp:  time.Now().UTC(),
	}
}

// ParseStorageChangedEvent парсит событие из сообщения.
func ParseStorageChangedEvent(message *sarama.ConsumerMessage) (*StorageChangedEvent, error) {
	var event StorageChangedEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal storage event: %w", err)
	}
	if event.EventType != EventTypeStorageChanged {
		return nil, fmt.Errorf("unexpected event type %q", event.EventType)
	}
	return &event, nil
}
