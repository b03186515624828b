package feed

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up the HTTP routes for the feed service
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-User-ID", "X-User-Name", "X-User-Avatar"},
		AllowCredentials: true,
	}))

	handler := NewHandler(s.service, s.assistant)

	// Health check (public)
	r.GET("/health", handler.Health)

	// Reading the feed works anonymously; liked flags just stay unset
	r.GET("/posts", OptionalAuthMiddleware(), handler.ListPosts)

	// Every mutation requires an authenticated viewer
	posts := r.Group("/posts")
	posts.Use(AuthMiddleware())
	{
		posts.POST("", handler.CreatePost)
		posts.PATCH("/:id", handler.EditPost)
		posts.DELETE("/:id", handler.DeletePost)
		posts.POST("/:id/like", handler.ToggleLike)
		posts.POST("/:id/comments", handler.AddComment)
	}

	r.POST("/feedback", AuthMiddleware(), handler.SubmitFeedback)
	r.POST("/interests", AuthMiddleware(), handler.SaveInterest)
	r.POST("/assistant", AuthMiddleware(), handler.Ask)

	// Usage statistics for the admin dashboard
	r.GET("/admin/stats", AuthMiddleware(), handler.AdminStats)

	return r
}
