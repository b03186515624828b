package auth

import (
	"errors"
	"log"
	"net/http"

	"petplaza/internal/config"
	"petplaza/internal/session"

	"github.com/gin-gonic/gin"
)

// Handler handles authentication HTTP requests
type Handler struct {
	service    Service
	sessionMgr session.Manager
}

// NewHandler creates a new authentication handler
func NewHandler(service Service, sessionMgr session.Manager) *Handler {
	return &Handler{
		service:    service,
		sessionMgr: sessionMgr,
	}
}

// Register handles POST /register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "email_taken",
				"message": "This email is already registered",
				"field":   "email",
			})
			return
		}
		log.Printf("Failed to register %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	h.issueSession(c, user)
}

// Login handles POST /login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		log.Printf("Failed to log in %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign in"})
		return
	}

	h.issueSession(c, user)
}

// Logout handles POST /logout
func (h *Handler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie("session_id")
	if err == nil && sessionID != "" {
		if err := h.sessionMgr.Delete(c.Request.Context(), sessionID); err != nil {
			log.Printf("Failed to delete session: %v", err)
		}
	}

	c.SetCookie("session_id", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me handles GET /me, resolving the account behind the gateway headers
func (h *Handler) Me(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "auth-service",
	})
}

func (h *Handler) issueSession(c *gin.Context, user *User) {
	maxAge := config.GetEnvInt("SESSION_MAX_AGE", 3600)

	sessionID, err := h.sessionMgr.Create(c.Request.Context(), session.Profile{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
	}, maxAge)
	if err != nil {
		log.Printf("Failed to create session for %s: %v", user.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.SetCookie("session_id", sessionID, maxAge, "/", "", false, true)
	c.JSON(http.StatusOK, AuthResponse{
		User:      user,
		SessionID: sessionID,
	})
}
