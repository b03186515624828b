// Package kafka wraps the Confluent client for publishing and consuming
// lost-pet alert events.
package kafka

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"petplaza/internal/feed"
)

// Producer wraps a Kafka producer with helper methods
type Producer struct {
	producer *kafka.Producer
	config   *Config
	logger   *slog.Logger
}

// NewProducer creates a new Kafka producer with idempotence enabled
func NewProducer(config *Config, logger *slog.Logger) (*Producer, error) {
	producerConfig := &kafka.ConfigMap{
		"bootstrap.servers":  config.Brokers,
		"enable.idempotence": config.EnableIdempotence,
		"acks":               config.Acks,
		"max.in.flight.requests.per.connection": 5,
		"retries":                               2147483647,
	}

	p, err := kafka.NewProducer(producerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	producer := &Producer{
		producer: p,
		config:   config,
		logger:   logger,
	}

	go producer.handleDeliveryReports()

	logger.Info("Kafka producer initialized",
		"brokers", config.Brokers,
		"idempotence", config.EnableIdempotence)

	return producer, nil
}

// PublishAlert publishes a lost-pet alert event. Delivery is asynchronous;
// failures show up in the delivery report log, not here.
func (p *Producer) PublishAlert(event feed.AlertEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &p.config.AlertEventsTopic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(event.PostID),
		Value: jsonData,
	}

	if err := p.producer.Produce(msg, nil); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	p.logger.Debug("Alert event published",
		"topic", p.config.AlertEventsTopic,
		"post_id", event.PostID)

	return nil
}

// PublishToDLQ publishes a failed message to the dead letter queue and
// waits for the delivery report. DLQ writes must not be fire and forget.
func (p *Producer) PublishToDLQ(value []byte) error {
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &p.config.AlertDLQTopic,
			Partition: kafka.PartitionAny,
		},
		Value: value,
	}

	deliveryChan := make(chan kafka.Event)

	if err := p.producer.Produce(msg, deliveryChan); err != nil {
		close(deliveryChan)
		return fmt.Errorf("failed to produce message: %w", err)
	}

	e := <-deliveryChan
	close(deliveryChan)

	m := e.(*kafka.Message)
	if m.TopicPartition.Error != nil {
		return fmt.Errorf("delivery failed: %w", m.TopicPartition.Error)
	}

	p.logger.Info("Message published to DLQ",
		"topic", p.config.AlertDLQTopic,
		"offset", m.TopicPartition.Offset)

	return nil
}

// handleDeliveryReports processes asynchronous delivery reports
func (p *Producer) handleDeliveryReports() {
	for e := range p.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				p.logger.Error("Delivery failed",
					"topic", *ev.TopicPartition.Topic,
					"error", ev.TopicPartition.Error)
			} else {
				p.logger.Debug("Message delivered",
					"topic", *ev.TopicPartition.Topic,
					"partition", ev.TopicPartition.Partition,
					"offset", ev.TopicPartition.Offset)
			}
		}
	}
}

// Flush waits for all messages to be delivered
func (p *Producer) Flush(timeoutMs int) int {
	remaining := p.producer.Flush(timeoutMs)
	if remaining > 0 {
		p.logger.Warn("Failed to flush all messages",
			"remaining", remaining)
	}
	return remaining
}

// Close flushes pending messages and closes the producer
func (p *Producer) Close() {
	p.logger.Info("Closing Kafka producer...")

	remaining := p.Flush(10000)
	if remaining > 0 {
		p.logger.Error("Some messages were not delivered",
			"count", remaining)
	}

	p.producer.Close()
	p.logger.Info("Kafka producer closed")
}
