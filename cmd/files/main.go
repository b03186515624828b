package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"petplaza/internal/config"
	"petplaza/internal/consul"
	"petplaza/internal/files"
	"petplaza/internal/logger"
	"petplaza/internal/storage"

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

	port := config.GetEnvInt("PORT", 8083)
	host := config.GetEnvOrDefault("FILES_SERVICE_HOST", "localhost")
	consulAddr := config.GetEnvOrDefault("CONSUL_HTTP_ADDR", "localhost:8500")
	consulToken := config.GetEnvOrDefault("CONSUL_HTTP_TOKEN", "")

	log.Println("Starting Files Service...")

	ctx := context.Background()
	storageService, err := storage.New(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	consulClient, err := consul.NewClient(consulAddr, consulToken)
	if err != nil {
		log.Fatalf("Failed to create Consul client: %v", err)
	}

	serviceID := fmt.Sprintf("files-service-%s", host)
	_ = consulClient.Deregister(serviceID)

	err = consulClient.Register(&consul.ServiceConfig{
		ID:      serviceID,
		Name:    "files-service",
		Address: host,
		Port:    port,
		Tags:    []string{"files", "photos", "api"},
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

	server := files.NewServer(files.NewService(storageService))

	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, consulClient, serviceID, done)

	log.Printf("Files Service listening on port %d", port)
	if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("http server error: %v", err)
	}

	<-done
	log.Println("Graceful shutdown complete.")
}
