package kafka

import (
	"fmt"
	"os"
	"strings"
)

// Config holds Kafka configuration
type Config struct {
	Brokers           string
	AlertEventsTopic  string
	AlertDLQTopic     string
	ConsumerGroup     string
	EnableIdempotence bool
	Acks              string
}

// LoadConfig loads Kafka configuration from environment variables
func LoadConfig() (*Config, error) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}

	alertEventsTopic := os.Getenv("KAFKA_TOPIC_ALERT_EVENTS")
	if alertEventsTopic == "" {
		alertEventsTopic = "lost-pet-alerts"
	}

	alertDLQTopic := os.Getenv("KAFKA_TOPIC_ALERT_DLQ")
	if alertDLQTopic == "" {
		alertDLQTopic = "lost-pet-alerts-dlq"
	}

	consumerGroup := os.Getenv("KAFKA_CONSUMER_GROUP")
	if consumerGroup == "" {
		consumerGroup = "alerts-service-group"
	}

	return &Config{
		Brokers:           brokers,
		AlertEventsTopic:  alertEventsTopic,
		AlertDLQTopic:     alertDLQTopic,
		ConsumerGroup:     consumerGroup,
		EnableIdempotence: true,
		Acks:              "all",
	}, nil
}

// GetBrokersList returns brokers as a slice
func (c *Config) GetBrokersList() []string {
	return strings.Split(c.Brokers, ",")
}
