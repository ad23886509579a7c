package utils

import (
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sharath018/invitation-rsvp-backend/config"
)

var KafkaWriter *kafka.Writer

// InitializeKafka prepares the shared writer. It returns false when no
// brokers are configured.
func InitializeKafka(cfg *config.Config) bool {
	if len(cfg.KafkaBrokers) == 0 {
		Log.Info("kafka disabled: KAFKA_BROKERS not set")
		return false
	}

	KafkaWriter = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return true
}

// NewKafkaReader returns a consumer-group reader on the change topic
func NewKafkaReader(cfg *config.Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
}
