package gateway

import (
	"log/slog"
	"net/http"
	"time"

	"petplaza/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionAuthMiddleware validates the session cookie and injects the
// viewer identity for downstream services. This is the only place a
// session is resolved; services behind the gateway trust the headers.
func SessionAuthMiddleware(sessionMgr session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie("session_id")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized: no session cookie",
			})
			return
		}

		sess, err := sessionMgr.Get(c.Request.Context(), sessionID)
		if err != nil {
			slog.Warn("invalid session",
				"error", err.Error(),
				"request_id", c.GetString("request_id"),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized: invalid session",
			})
			return
		}

		if time.Now().After(sess.ExpiresAt) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized: session expired",
			})
			return
		}

		c.Set("user_id", sess.UserID)
		c.Set("email", sess.Email)

		// Identity headers for proxied requests
		c.Request.Header.Set("X-User-ID", sess.UserID)
		c.Request.Header.Set("X-User-Email", sess.Email)
		c.Request.Header.Set("X-User-Name", sess.DisplayName)
		c.Request.Header.Set("X-User-Avatar", sess.AvatarURL)

		c.Next()
	}
}

// OptionalSessionMiddleware resolves the session if one is present but
// lets anonymous requests through with the identity headers stripped.
// Used for the public feed read path.
func OptionalSessionMiddleware(sessionMgr session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Never trust client-supplied identity headers
		c.Request.Header.Del("X-User-ID")
		c.Request.Header.Del("X-User-Email")
		c.Request.Header.Del("X-User-Name")
		c.Request.Header.Del("X-User-Avatar")

		sessionID, err := c.Cookie("session_id")
		if err == nil && sessionID != "" {
			if sess, err := sessionMgr.Get(c.Request.Context(), sessionID); err == nil {
				c.Set("user_id", sess.UserID)
				c.Request.Header.Set("X-User-ID", sess.UserID)
				c.Request.Header.Set("X-User-Email", sess.Email)
				c.Request.Header.Set("X-User-Name", sess.DisplayName)
				c.Request.Header.Set("X-User-Avatar", sess.AvatarURL)
			}
		}
		c.Next()
	}
}

// CORSMiddleware handles CORS for the gateway
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "http://localhost:5173")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestIDMiddleware tags each request with a unique ID for correlation
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// LoggingMiddleware emits one structured log line per request
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rw := newResponseWriter(c.Writer)
		c.Writer = rw

		c.Next()

		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", rw.Status(),
			"size", rw.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString("request_id"),
		)
	}
}
