// Package session provides viewer session management shared by the
// gateway and auth services. Sessions are stored behind the Store
// abstraction (Redis in live mode) with TTL-based expiration.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSessionNotFound is returned when a session is not found
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a session has expired
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidSession is returned when session data is invalid
	ErrInvalidSession = errors.New("invalid session")
)

// Profile carries the viewer identity stored in a session
type Profile struct {
	UserID      string
	Email       string
	DisplayName string
	AvatarURL   string
}

// Manager defines the interface for session management operations
type Manager interface {
	Create(ctx context.Context, profile Profile, maxAge int) (string, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
	Validate(ctx context.Context, sessionID string) (bool, error)
}

type manager struct {
	store Store
}

// NewManager creates a session manager on top of the given store
func NewManager(store Store) Manager {
	return &manager{store: store}
}

// Create stores a new session and returns its ID
func (m *manager) Create(ctx context.Context, profile Profile, maxAge int) (string, error) {
	sessionID := uuid.New().String()

	now := time.Now()
	sess := &Session{
		ID:          sessionID,
		UserID:      profile.UserID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		AvatarURL:   profile.AvatarURL,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Duration(maxAge) * time.Second),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	key := sessionKey(sessionID)
	ttl := time.Duration(maxAge) * time.Second
	if err := m.store.Set(ctx, key, string(data), ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return sessionID, nil
}

// Get retrieves a session by ID
func (m *manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := m.store.Get(ctx, sessionKey(sessionID))
	if err != nil {
		return nil, ErrSessionNotFound
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, ErrInvalidSession
	}

	if time.Now().After(sess.ExpiresAt) {
		// TTL should have evicted this already; clean up regardless
		m.store.Delete(ctx, sessionKey(sessionID))
		return nil, ErrSessionExpired
	}

	return &sess, nil
}

// Delete removes a session
func (m *manager) Delete(ctx context.Context, sessionID string) error {
	return m.store.Delete(ctx, sessionKey(sessionID))
}

// Validate checks whether a session exists and is still valid
func (m *manager) Validate(ctx context.Context, sessionID string) (bool, error) {
	sess, err := m.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return sess != nil, nil
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}
