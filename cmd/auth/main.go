package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"petplaza/internal/auth"
	"petplaza/internal/config"
	"petplaza/internal/consul"
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

	port := config.GetEnvInt("PORT", 8081)
	host := config.GetEnvOrDefault("AUTH_SERVICE_HOST", "localhost")
	consulAddr := config.GetEnvOrDefault("CONSUL_HTTP_ADDR", "localhost:8500")
	consulToken := config.GetEnvOrDefault("CONSUL_HTTP_TOKEN", "")

	log.Println("Starting Auth Service...")

	consulClient, err := consul.NewClient(consulAddr, consulToken)
	if err != nil {
		log.Fatalf("Failed to create Consul client: %v", err)
	}

	serviceID := fmt.Sprintf("auth-service-%s", host)
	_ = consulClient.Deregister(serviceID)

	err = consulClient.Register(&consul.ServiceConfig{
		ID:      serviceID,
		Name:    "auth-service",
		Address: host,
		Port:    port,
		Tags:    []string{"auth", "sessions", "api"},
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

	apiServer := auth.NewServer()

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, consulClient, serviceID, done)

	log.Printf("Auth Service listening on port %d", port)
	if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("http server error: %v", err)
	}

	<-done
	log.Println("Graceful shutdown complete.")
}
