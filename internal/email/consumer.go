package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"petplaza/internal/feed"
)

// Consumer wraps a Kafka consumer with alert processing logic
type Consumer struct {
	consumer         *kafka.Consumer
	sender           Sender
	recipients       RecipientSource
	idempotencyStore *IdempotencyStore
	dlqProducer      *kafka.Producer
	config           *ConsumerConfig
	logger           *slog.Logger
}

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	Brokers       string
	Topic         string
	DLQTopic      string
	ConsumerGroup string
	MaxRetries    int
}

// NewConsumer creates a new Kafka consumer with manual offset commits
func NewConsumer(
	config *ConsumerConfig,
	sender Sender,
	recipients RecipientSource,
	idempotencyStore *IdempotencyStore,
	logger *slog.Logger,
) (*Consumer, error) {
	consumerConfig := &kafka.ConfigMap{
		"bootstrap.servers":  config.Brokers,
		"group.id":           config.ConsumerGroup,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
	}

	c, err := kafka.NewConsumer(consumerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	dlqProducerConfig := &kafka.ConfigMap{
		"bootstrap.servers": config.Brokers,
	}
	dlqProducer, err := kafka.NewProducer(dlqProducerConfig)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create DLQ producer: %w", err)
	}

	consumer := &Consumer{
		consumer:         c,
		sender:           sender,
		recipients:       recipients,
		idempotencyStore: idempotencyStore,
		dlqProducer:      dlqProducer,
		config:           config,
		logger:           logger,
	}

	logger.Info("Kafka consumer initialized",
		"brokers", config.Brokers,
		"topic", config.Topic,
		"group", config.ConsumerGroup)

	return consumer, nil
}

// Start consumes alert events until the context is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.consumer.Subscribe(c.config.Topic, nil); err != nil {
		return fmt.Errorf("failed to subscribe to topic: %w", err)
	}

	c.logger.Info("Starting to consume messages",
		"topic", c.config.Topic)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Consumer shutting down...")
			return nil

		default:
			msg, err := c.consumer.ReadMessage(1 * time.Second)
			if err != nil {
				if err.(kafka.Error).Code() == kafka.ErrTimedOut {
					continue
				}
				c.logger.Error("Error reading message", "error", err)
				continue
			}

			c.processMessage(ctx, msg)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg *kafka.Message) {
	c.logger.Info("Received alert event",
		"topic", *msg.TopicPartition.Topic,
		"partition", msg.TopicPartition.Partition,
		"offset", msg.TopicPartition.Offset)

	var event feed.AlertEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to parse alert event",
			"error", err,
			"raw_value", string(msg.Value))
		c.commitMessage(msg) // skip bad message
		return
	}

	if event.MessageID == "" {
		c.logger.Error("Alert event missing message_id",
			"post_id", event.PostID)
		c.commitMessage(msg)
		return
	}

	isProcessed, err := c.idempotencyStore.IsProcessed(ctx, event.MessageID)
	if err != nil {
		c.logger.Error("Failed to check idempotency",
			"messageID", event.MessageID,
			"error", err)
		// Don't commit, will retry
		return
	}

	if isProcessed {
		c.logger.Warn("Duplicate alert event detected, skipping",
			"messageID", event.MessageID,
			"post_id", event.PostID)
		c.commitMessage(msg)
		return
	}

	sent, err := c.processWithRetry(ctx, event)
	if err != nil {
		c.logger.Error("Failed to process alert event after retries",
			"messageID", event.MessageID,
			"error", err)
		c.sendToDLQ(event, err)
		c.commitMessage(msg) // move past failed message
		return
	}

	success, err := c.idempotencyStore.MarkAsProcessed(ctx, event, sent)
	if err != nil {
		c.logger.Error("Failed to mark as processed",
			"messageID", event.MessageID,
			"error", err)
		// Don't commit, will retry
		return
	}

	if !success {
		c.logger.Warn("Message was processed by another consumer",
			"messageID", event.MessageID)
	}

	c.commitMessage(msg)

	c.logger.Info("Alert event processed successfully",
		"messageID", event.MessageID,
		"post_id", event.PostID,
		"recipients", sent)
}

// processWithRetry fans the alert out to all recipients with retries.
// Returns how many emails went out.
func (c *Consumer) processWithRetry(ctx context.Context, event feed.AlertEvent) (int, error) {
	maxRetries := c.config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		sent, err := c.fanOut(ctx, event)
		if err == nil {
			if attempt > 1 {
				c.logger.Info("Alert sent successfully after retry",
					"messageID", event.MessageID,
					"attempt", attempt)
			}
			return sent, nil
		}

		lastErr = err
		c.logger.Warn("Failed to send alert, will retry",
			"messageID", event.MessageID,
			"attempt", attempt,
			"maxRetries", maxRetries,
			"error", err)

		if attempt < maxRetries {
			backoff := time.Duration(attempt) * time.Second
			time.Sleep(backoff)
		}
	}

	return 0, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Consumer) fanOut(ctx context.Context, event feed.AlertEvent) (int, error) {
	emails, err := c.recipients.Recipients(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve recipients: %w", err)
	}

	sent := 0
	for _, addr := range emails {
		if err := c.sender.SendLostPetAlert(addr, event); err != nil {
			return sent, fmt.Errorf("failed to send to %s: %w", addr, err)
		}
		sent++
	}

	return sent, nil
}

// sendToDLQ sends a failed message to the dead letter queue
func (c *Consumer) sendToDLQ(event feed.AlertEvent, processingError error) {
	dlqEvent := map[string]interface{}{
		"original_event": event,
		"error":          processingError.Error(),
		"failed_at":      time.Now(),
		"consumer_group": c.config.ConsumerGroup,
	}

	jsonData, err := json.Marshal(dlqEvent)
	if err != nil {
		c.logger.Error("Failed to marshal DLQ event",
			"messageID", event.MessageID,
			"error", err)
		return
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &c.config.DLQTopic,
			Partition: kafka.PartitionAny,
		},
		Value: jsonData,
	}

	if err := c.dlqProducer.Produce(msg, nil); err != nil {
		c.logger.Error("Failed to send to DLQ",
			"messageID", event.MessageID,
			"error", err)
		return
	}

	c.logger.Warn("Alert event sent to DLQ",
		"messageID", event.MessageID,
		"post_id", event.PostID,
		"dlq_topic", c.config.DLQTopic)
}

func (c *Consumer) commitMessage(msg *kafka.Message) {
	if _, err := c.consumer.CommitMessage(msg); err != nil {
		c.logger.Error("Failed to commit offset",
			"topic", *msg.TopicPartition.Topic,
			"partition", msg.TopicPartition.Partition,
			"offset", msg.TopicPartition.Offset,
			"error", err)
	}
}

// Close closes the consumer and its DLQ producer
func (c *Consumer) Close() {
	c.logger.Info("Closing Kafka consumer...")
	c.dlqProducer.Flush(5000)
	c.dlqProducer.Close()
	c.consumer.Close()
	c.logger.Info("Kafka consumer closed")
}
