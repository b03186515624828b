package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"petplaza/internal/session"

	"github.com/gin-gonic/gin"
)

// Mock session manager for testing
type mockSessionManager struct {
	getFunc func(ctx context.Context, sessionID string) (*session.Session, error)
}

func (m *mockSessionManager) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, sessionID)
	}
	return nil, errors.New("session not found")
}

func (m *mockSessionManager) Create(ctx context.Context, profile session.Profile, maxAge int) (string, error) {
	return "", nil
}

func (m *mockSessionManager) Delete(ctx context.Context, sessionID string) error {
	return nil
}

func (m *mockSessionManager) Validate(ctx context.Context, sessionID string) (bool, error) {
	return true, nil
}

func validSessionManager() *mockSessionManager {
	return &mockSessionManager{
		getFunc: func(ctx context.Context, sessionID string) (*session.Session, error) {
			return &session.Session{
				ID:          sessionID,
				UserID:      "test-user-id",
				Email:       "test@example.com",
				DisplayName: "Tester",
				AvatarURL:   "http://cdn/t.png",
				CreatedAt:   time.Now(),
				ExpiresAt:   time.Now().Add(1 * time.Hour),
			}, nil
		},
	}
}

func identityEchoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"header_user":   c.Request.Header.Get("X-User-ID"),
		"header_email":  c.Request.Header.Get("X-User-Email"),
		"header_name":   c.Request.Header.Get("X-User-Name"),
		"header_avatar": c.Request.Header.Get("X-User-Avatar"),
	})
}

func TestSessionAuthMiddleware_ValidSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(SessionAuthMiddleware(validSessionManager()))
	r.GET("/test", identityEchoHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session-id"})
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["header_user"] != "test-user-id" {
		t.Errorf("Expected header_user test-user-id, got %v", response["header_user"])
	}
	if response["header_email"] != "test@example.com" {
		t.Errorf("Expected header_email test@example.com, got %v", response["header_email"])
	}
	if response["header_name"] != "Tester" {
		t.Errorf("Expected header_name Tester, got %v", response["header_name"])
	}
}

func TestSessionAuthMiddleware_NoSessionCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(SessionAuthMiddleware(&mockSessionManager{}))
	r.GET("/test", identityEchoHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestSessionAuthMiddleware_InvalidSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(SessionAuthMiddleware(&mockSessionManager{}))
	r.GET("/test", identityEchoHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "bogus"})
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestSessionAuthMiddleware_ExpiredSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	expiredMgr := &mockSessionManager{
		getFunc: func(ctx context.Context, sessionID string) (*session.Session, error) {
			return &session.Session{
				ID:        sessionID,
				UserID:    "test-user-id",
				ExpiresAt: time.Now().Add(-1 * time.Minute),
			}, nil
		},
	}

	r := gin.New()
	r.Use(SessionAuthMiddleware(expiredMgr))
	r.GET("/test", identityEchoHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "expired"})
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestOptionalSessionMiddleware_AnonymousPassesWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(OptionalSessionMiddleware(&mockSessionManager{}))
	r.GET("/test", identityEchoHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	// A client must not be able to smuggle identity headers past the gateway
	req.Header.Set("X-User-ID", "forged-user")
	req.Header.Set("X-User-Email", "forged@example.com")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatal(err)
	}
	if response["header_user"] != "" {
		t.Errorf("Forged X-User-ID must be stripped, got %v", response["header_user"])
	}
	if response["header_email"] != "" {
		t.Errorf("Forged X-User-Email must be stripped, got %v", response["header_email"])
	}
}

func TestOptionalSessionMiddleware_WithSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(OptionalSessionMiddleware(validSessionManager()))
	r.GET("/test", identityEchoHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session-id"})
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatal(err)
	}
	if response["header_user"] != "test-user-id" {
		t.Errorf("Expected identity injection, got %v", response["header_user"])
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString("request_id")})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID response header")
	}
}
