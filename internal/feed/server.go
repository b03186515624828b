package feed

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"petplaza/internal/assistant"
	"petplaza/internal/config"
	"petplaza/internal/logger"
	"petplaza/internal/session"
)

// Server holds the dependencies for the feed service
type Server struct {
	port      int
	service   *Service
	assistant assistant.Client
}

// NewServer wires the feed service and returns a configured HTTP server.
// The store mode (Postgres or in-memory) is read once here; both the post
// store and the liked-flag store derive from that single decision and are
// injected, so nothing below this point branches on the mode.
func NewServer(publisher AlertPublisher, ai assistant.Client) *http.Server {
	port := config.GetEnvInt("PORT", 8082)
	storeMode := config.GetEnvOrDefault("FEED_STORE", StoreModePostgres)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	store, err := NewStore(ctx, storeMode)
	if err != nil {
		log.Fatalf("failed to initialize feed store: %v", err)
	}

	var likedSet session.Store
	if storeMode == StoreModeMemory {
		likedSet = session.NewMemoryStore()
	} else {
		likedSet = session.NewRedisStore(
			config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			config.GetEnvOrDefault("REDIS_PASSWORD", ""),
			config.GetEnvInt("REDIS_DB", 0),
		)
	}

	likedTTL := time.Duration(config.GetEnvInt("SESSION_MAX_AGE", 3600)) * time.Second
	service := NewService(store, likedSet, publisher, likedTTL, logger.New())

	appServer := &Server{
		port:      port,
		service:   service,
		assistant: ai,
	}

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           appServer.RegisterRoutes(),
		ReadTimeout:       config.GetEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      config.GetEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:       config.GetEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
