package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/m3rciful/storebot/core/logger"
)

// Config selects the Kafka cluster and topic for order events.
type Config struct {
	Brokers  []string `yaml:"brokers" envconfig:"KAFKA_BROKERS"`
	Topic    string   `yaml:"topic" envconfig:"KAFKA_TOPIC"`
	ClientID string   `yaml:"client_id" envconfig:"KAFKA_CLIENT_ID"`
}

// Enabled reports whether a broker list was configured.
func (c Config) Enabled() bool { return len(c.Brokers) > 0 }

// Kafka publishes events through a synchronous sarama producer keyed by order number.
type Kafka struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafka connects a producer to cfg.Brokers.
func NewKafka(cfg Config) (*Kafka, error) {
	if !cfg.Enabled() {
		return nil, errors.New("events: no kafka brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("events: kafka topic is required")
	}
	sc := sarama.NewConfig()
	if cfg.ClientID != "" {
		sc.ClientID = cfg.ClientID
	}
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 5
	sc.Producer.Return.Successes = true
	sc.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("events: start kafka producer: %w", err)
	}
	logger.Info(context.Background(), "events", "kafka.connect",
		slog.Int("brokers", len(cfg.Brokers)),
		slog.String("topic", cfg.Topic),
	)
	return NewKafkaWithProducer(producer, cfg.Topic), nil
}

// NewKafkaWithProducer wraps an existing producer.
func NewKafkaWithProducer(p sarama.SyncProducer, topic string) *Kafka {
	return &Kafka{producer: p, topic: topic}
}

func (k *Kafka) Publish(ctx context.Context, e OrderEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", e.Type, err)
	}
	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(e.OrderNumber),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(e.Type)},
		},
	}
	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		logger.Warn(ctx, "events", "kafka.send",
			slog.String("status", "fail"),
			slog.String("topic", k.topic),
			slog.String("event_type", string(e.Type)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("events: publish %s: %w", e.Type, err)
	}
	logger.Debug(ctx, "events", "kafka.send",
		slog.String("status", "ok"),
		slog.String("topic", k.topic),
		slog.String("event_type", string(e.Type)),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

// Close flushes and closes the producer.
func (k *Kafka) Close() error {
	return k.producer.Close()
}
