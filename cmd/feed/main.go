package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"petplaza/internal/assistant"
	"petplaza/internal/config"
	"petplaza/internal/consul"
	"petplaza/internal/feed"
	"petplaza/internal/kafka"
	"petplaza/internal/logger"

	_ "github.com/joho/godotenv/autoload"
)

func gracefulShutdown(apiServer *http.Server, consulClient *consul.Client, serviceID string, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Println("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	if err := consulClient.Deregister(serviceID); err != nil {
		log.Printf("Failed to deregister from Consul: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	done <- true
}

func main() {
	slogger := logger.New()
	logger.SetDefault(slogger)

	port := config.GetEnvInt("PORT", 8082)
	host := config.GetEnvOrDefault("FEED_SERVICE_HOST", "localhost")
	consulAddr := config.GetEnvOrDefault("CONSUL_HTTP_ADDR", "localhost:8500")
	consulToken := config.GetEnvOrDefault("CONSUL_HTTP_TOKEN", "")

	log.Println("Starting Feed Service...")

	consulClient, err := consul.NewClient(consulAddr, consulToken)
	if err != nil {
		log.Fatalf("Failed to create Consul client: %v", err)
	}

	// Static service ID so a restart replaces the old registration
	serviceID := fmt.Sprintf("feed-service-%s", host)
	_ = consulClient.Deregister(serviceID)

	err = consulClient.Register(&consul.ServiceConfig{
		ID:      serviceID,
		Name:    "feed-service",
		Address: host,
		Port:    port,
		Tags:    []string{"feed", "posts", "api"},
		Check: &consul.HealthCheck{
			HTTP:     fmt.Sprintf("http://%s:%d/health", host, port),
			Interval: "10s",
			Timeout:  "3s",
		},
	})
	if err != nil {
		log.Fatalf("Failed to register service with Consul: %v", err)
	}
	log.Printf("Registered with Consul as %s", serviceID)

	// Alert publishing is best effort; the feed runs without a broker
	var publisher feed.AlertPublisher
	if kafkaCfg, err := kafka.LoadConfig(); err != nil {
		log.Printf("Kafka disabled: %v", err)
	} else {
		producer, err := kafka.NewProducer(kafkaCfg, slogger)
		if err != nil {
			log.Printf("Kafka producer unavailable, alerts disabled: %v", err)
		} else {
			defer producer.Close()
			publisher = producer
		}
	}

	// Same for the pet-expert assistant: without a model API key the
	// endpoint just reports unavailable
	var aiClient assistant.Client
	if key := config.GetEnvOrDefault("GEMINI_API_KEY", ""); key == "" {
		log.Println("Assistant disabled: GEMINI_API_KEY not set")
	} else {
		model := config.GetEnvOrDefault("GEMINI_MODEL", "gemini-3-flash-preview")
		client, err := assistant.New(context.Background(), key, model)
		if err != nil {
			log.Printf("Assistant unavailable: %v", err)
		} else {
			aiClient = client
		}
	}

	apiServer := feed.NewServer(publisher, aiClient)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, consulClient, serviceID, done)

	log.Printf("Feed Service listening on port %d", port)
	if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("http server error: %v", err)
	}

	<-done
	log.Println("Graceful shutdown complete.")
}
