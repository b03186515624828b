package feed

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware extracts the viewer identity from headers set by the
// gateway after session validation. Requests without an identity are
// rejected before they reach a handler.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Success: false,
				Error:   "unauthorized: missing user authentication",
			})
			c.Abort()
			return
		}

		c.Set("viewer", Author{
			ID:     userID,
			Name:   c.GetHeader("X-User-Name"),
			Avatar: c.GetHeader("X-User-Avatar"),
		})
		c.Next()
	}
}

// OptionalAuthMiddleware extracts the viewer identity if present. Used on
// read endpoints that work for anonymous viewers too.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set("viewer", Author{
				ID:     userID,
				Name:   c.GetHeader("X-User-Name"),
				Avatar: c.GetHeader("X-User-Avatar"),
			})
		}
		c.Next()
	}
}

// GetViewer extracts the viewer from the request context. The zero Author
// means an anonymous viewer.
func GetViewer(c *gin.Context) Author {
	value, exists := c.Get("viewer")
	if !exists {
		return Author{}
	}
	viewer, ok := value.(Author)
	if !ok {
		return Author{}
	}
	return viewer
}
