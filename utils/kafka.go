package utils

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/taroc/schedule-service-sub002/config"
)

var kafkaWriter *kafka.Writer

// TransitionMessage is the payload published for every engine state transition.
// The notification consumer (internal/notification/kafka.go) turns these into
// in-app notifications; external consumers may subscribe to the same topic.
type TransitionMessage struct {
	Type       string    `json:"type"` // matched, confirmation_required, deadline_approaching, expired, rolled_back
	EventID    uint      `json:"event_id"`
	EventName  string    `json:"event_name"`
	UserIDs    []uint    `json:"user_ids"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// InitializeKafka sets up the shared writer for the transitions topic.
func InitializeKafka(cfg *config.Config) {
	kafkaWriter = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	log.Printf("✅ Kafka writer initialized (topic=%s)", cfg.KafkaTopic)
}

// PublishTransition sends a transition message. Delivery problems are logged
// and swallowed: matching outcomes must not depend on broker health.
func PublishTransition(ctx context.Context, msg TransitionMessage) {
	if kafkaWriter == nil {
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("⚠️ Kafka marshal failed: %v", err)
		return
	}

	err = kafkaWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Type),
		Value: payload,
	})
	if err != nil {
		log.Printf("⚠️ Kafka publish failed (type=%s event=%d): %v", msg.Type, msg.EventID, err)
	}
}

// NewTransitionReader builds a consumer-group reader for the transitions topic.
func NewTransitionReader(cfg *config.Config, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  2 * time.Second,
	})
}

// CloseKafka flushes and closes the writer during shutdown.
func CloseKafka() {
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			log.Printf("⚠️ Kafka writer close failed: %v", err)
		}
	}
}
