package auth

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"petplaza/internal/config"
	"petplaza/internal/database"
	"petplaza/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewServer wires the auth service and returns a configured HTTP server
func NewServer() *http.Server {
	port := config.GetEnvInt("PORT", 8081)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	service, err := NewService(ctx, database.New())
	if err != nil {
		log.Fatalf("failed to initialize auth service: %v", err)
	}

	sessionStore := session.NewRedisStore(
		config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		config.GetEnvOrDefault("REDIS_PASSWORD", ""),
		config.GetEnvInt("REDIS_DB", 0),
	)
	sessionMgr := session.NewManager(sessionStore)

	handler := NewHandler(service, sessionMgr)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))

	r.GET("/health", handler.Health)
	r.POST("/register", handler.Register)
	r.POST("/login", handler.Login)
	r.POST("/logout", handler.Logout)
	r.GET("/me", handler.Me)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadTimeout:       config.GetEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      config.GetEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:       config.GetEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
