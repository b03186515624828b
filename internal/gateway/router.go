// Package gateway implements the API gateway: session validation,
// service discovery, and request routing to the backend services.
package gateway

import (
	"petplaza/internal/consul"
	"petplaza/internal/session"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the gateway router
func SetupRouter(consulClient *consul.Client, sessionMgr session.Manager) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware())

	proxyHandler := NewProxyHandler(consulClient)

	r.GET("/health", proxyHandler.Health)

	// Public auth routes (no session required)
	auth := r.Group("/auth")
	{
		auth.POST("/register", proxyHandler.ProxyWithPathRewrite("auth-service", "/auth"))
		auth.POST("/login", proxyHandler.ProxyWithPathRewrite("auth-service", "/auth"))
		auth.POST("/logout", proxyHandler.ProxyWithPathRewrite("auth-service", "/auth"))
	}

	// The feed itself is readable without a session; liked flags and all
	// mutations need one.
	r.GET("/api/feed/posts",
		OptionalSessionMiddleware(sessionMgr),
		proxyHandler.ProxyWithPathRewrite("feed-service", "/api/feed"))

	api := r.Group("/api")
	api.Use(SessionAuthMiddleware(sessionMgr))
	{
		api.GET("/auth/me", proxyHandler.ProxyWithPathRewrite("auth-service", "/api/auth"))

		feed := api.Group("/feed")
		{
			feed.POST("/posts", proxyHandler.ProxyWithPathRewrite("feed-service", "/api/feed"))
			feed.Any("/posts/*path", proxyHandler.ProxyWithPathRewrite("feed-service", "/api/feed"))
			feed.POST("/feedback", proxyHandler.ProxyWithPathRewrite("feed-service", "/api/feed"))
			feed.POST("/interests", proxyHandler.ProxyWithPathRewrite("feed-service", "/api/feed"))
			feed.POST("/assistant", proxyHandler.ProxyWithPathRewrite("feed-service", "/api/feed"))
			feed.GET("/admin/stats", proxyHandler.ProxyWithPathRewrite("feed-service", "/api/feed"))
		}

		files := api.Group("/files")
		{
			files.Any("", proxyHandler.ProxyWithPathRewrite("files-service", "/api/files"))
			files.Any("/*path", proxyHandler.ProxyWithPathRewrite("files-service", "/api/files"))
		}
	}

	return r
}
