package files

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server holds dependencies for the files service
type Server struct {
	service *Service
}

// NewServer creates a new files server
func NewServer(service *Service) *Server {
	return &Server{service: service}
}

// RegisterRoutes sets up HTTP routes for the files service
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-User-ID", "X-User-Email"},
		AllowCredentials: true,
	}))

	handler := NewHandler(s.service)

	r.GET("/health", handler.Health)

	// Authentication happens at the gateway
	r.POST("", handler.Upload)
	r.GET("/:key/url", handler.DownloadURL)
	r.DELETE("/:key", handler.Delete)

	return r
}
