// Package events публикует изменения слотов для других сервисов.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Type string

const (
	SlotCreated  Type = "slot.created"
	SlotDeleted  Type = "slot.deleted"
	SlotMoved    Type = "slot.moved"
	SlotsCleared Type = "slots.cleared"
)

// Event изменение слотов провайдера
type Event struct {
	ID         uuid.UUID    `json:"id"`
	Type       Type         `json:"type"`
	ProviderID int64        `json:"provider_id"`
	SlotID     int64        `json:"slot_id,omitempty"`
	PreviousID int64        `json:"previous_id,omitempty"`
	Day        string       `json:"day"`
	Window     model.Window `json:"window"`
	Count      int64        `json:"count,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// NewSlotEvent событие об одном слоте
func NewSlotEvent(t Type, slot *model.Slot) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		ProviderID: slot.ProviderID,
		SlotID:     slot.ID,
		Day:        model.FormatDay(slot.Day),
		Window:     slot.Window(),
		OccurredAt: time.Now().UTC(),
	}
}

// NewClearedEvent событие об очистке дня
func NewClearedEvent(providerID int64, day time.Time, count int64) Event {
	return Event{
		ID:         uuid.New(),
		Type:       SlotsCleared,
		ProviderID: providerID,
		Day:        model.FormatDay(day),
		Count:      count,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher отправляет события
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher ничего не отправляет, используется без Kafka
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// KafkaPublisher пишет события в топик, ключ - provider_id,
// чтобы события одного провайдера шли по порядку в одну партицию
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		logger: logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	msg, err := Message(e)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event %s: %w", e.Type, err)
	}

	p.logger.Debug("Event published",
		zap.String("event_id", e.ID.String()),
		zap.String("type", string(e.Type)),
		zap.Int64("provider_id", e.ProviderID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Message собирает kafka-сообщение из события
func Message(e Event) (kafka.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(strconv.FormatInt(e.ProviderID, 10)),
		Value: payload,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(e.ID.String())},
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}, nil
}

// SplitBrokers разбирает список брокеров через запятую
func SplitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
