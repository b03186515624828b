package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"petplaza/internal/config"
	"petplaza/internal/consul"
	"petplaza/internal/database"
	"petplaza/internal/email"
	"petplaza/internal/kafka"
	"petplaza/internal/logger"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
)

func main() {
	lgr := logger.New()
	logger.SetDefault(lgr)
	lgr.Info("Starting Alerts Service...")

	port := config.GetEnvInt("PORT", 8084)
	host := config.GetEnvOrDefault("ALERTS_SERVICE_HOST", "localhost")
	consulAddr := config.GetEnvOrDefault("CONSUL_HTTP_ADDR", "localhost:8500")
	consulToken := config.GetEnvOrDefault("CONSUL_HTTP_TOKEN", "")
	redisAddr := config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379")
	redisPassword := config.GetEnvOrDefault("REDIS_PASSWORD", "")

	kafkaCfg, err := kafka.LoadConfig()
	if err != nil {
		lgr.Error("Failed to load Kafka configuration", "error", err)
		os.Exit(1)
	}

	lgr.Info("Configuration loaded",
		"port", port,
		"host", host,
		"consul", consulAddr,
		"redis", redisAddr,
		"kafka", kafkaCfg.Brokers,
		"topic", kafkaCfg.AlertEventsTopic)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       0,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		lgr.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	lgr.Info("Connected to Redis")

	idempotencyStore := email.NewIdempotencyStore(redisClient, lgr)

	emailConfig := email.NewConfig()
	emailSender := email.NewSender(emailConfig)
	lgr.Info("Email sender initialized", "mode", emailConfig.Mode)

	// Recipients come from the shared users table unless a static list
	// is configured.
	var recipients email.RecipientSource
	if list := config.GetEnvOrDefault("ALERT_RECIPIENTS", ""); list != "" {
		recipients = email.StaticRecipients(config.SplitList(list))
		lgr.Info("Using static recipient list")
	} else {
		recipients = email.NewPGRecipients(database.New())
		lgr.Info("Using users table as recipient source")
	}

	consumerConfig := &email.ConsumerConfig{
		Brokers:       kafkaCfg.Brokers,
		Topic:         kafkaCfg.AlertEventsTopic,
		DLQTopic:      kafkaCfg.AlertDLQTopic,
		ConsumerGroup: kafkaCfg.ConsumerGroup,
		MaxRetries:    3,
	}

	consumer, err := email.NewConsumer(consumerConfig, emailSender, recipients, idempotencyStore, lgr)
	if err != nil {
		lgr.Error("Failed to create Kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	consumerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		lgr.Info("Starting Kafka consumer...")
		if err := consumer.Start(consumerCtx); err != nil {
			lgr.Error("Consumer error", "error", err)
		}
	}()

	r := gin.Default()
	handler := email.NewHandler(redisClient, idempotencyStore, lgr)
	r.GET("/health", handler.HealthCheck)

	consulClient, err := consul.NewClient(consulAddr, consulToken)
	if err != nil {
		lgr.Error("Failed to create Consul client", "error", err)
		os.Exit(1)
	}

	serviceID := fmt.Sprintf("alerts-service-%s", host)
	_ = consulClient.Deregister(serviceID)

	err = consulClient.Register(&consul.ServiceConfig{
		ID:      serviceID,
		Name:    "alerts-service",
		Address: host,
		Port:    port,
		Tags:    []string{"alerts", "email", "consumer"},
		Check: &consul.HealthCheck{
			HTTP:     fmt.Sprintf("http://%s:%d/health", host, port),
			Interval: "10s",
			Timeout:  "3s",
		},
	})
	if err != nil {
		lgr.Error("Failed to register service with Consul", "error", err)
		os.Exit(1)
	}
	lgr.Info("Registered with Consul", "serviceID", serviceID)

	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      r,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		lgr.Info("Alerts Service listening", "port", port)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lgr.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	lgr.Info("Shutting down gracefully...")
	cancel()

	if err := consulClient.Deregister(serviceID); err != nil {
		lgr.Error("Failed to deregister from Consul", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		lgr.Error("Server forced to shutdown", "error", err)
	}

	lgr.Info("Graceful shutdown complete")
}
