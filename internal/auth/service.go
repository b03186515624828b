// Package auth implements account management for the auth service:
// email/password registration and login, with sessions handed off to the
// session manager.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"petplaza/internal/database"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmailExists is returned when the email is already registered
	ErrEmailExists = errors.New("email already registered")
	// ErrInvalidCredentials is returned for a bad email/password pair
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound is returned when the user does not exist
	ErrUserNotFound = errors.New("user not found")
)

const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
	user_id       TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	display_name  TEXT NOT NULL,
	role          TEXT NOT NULL,
	pet_name      TEXT NOT NULL DEFAULT '',
	pet_type      TEXT NOT NULL DEFAULT '',
	avatar_url    TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);
`

// Service defines the authentication service interface
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
}

type service struct {
	db database.Service
}

// NewService creates the auth service and ensures the users schema exists
func NewService(ctx context.Context, db database.Service) (Service, error) {
	if _, err := db.Exec(ctx, usersSchema); err != nil {
		return nil, fmt.Errorf("failed to ensure users schema: %w", err)
	}
	return &service{db: db}, nil
}

// Register creates a new account with a bcrypt-hashed password
func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &User{
		ID:          uuid.New().String(),
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		PetName:     req.PetName,
		PetType:     req.PetType,
		AvatarURL:   req.AvatarURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	const q = `
		INSERT INTO users (user_id, email, password_hash, display_name, role, pet_name, pet_type, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (email) DO NOTHING
	`
	res, err := s.db.Exec(ctx, q,
		user.ID, user.Email, string(hash), user.DisplayName, user.Role,
		user.PetName, user.PetType, user.AvatarURL, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrEmailExists
	}

	return user, nil
}

// Login verifies the credentials and returns the account
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	const q = `
		SELECT user_id, email, password_hash, display_name, role, pet_name, pet_type, avatar_url, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	var user User
	var hash string
	err := s.db.QueryRow(ctx, q, email).Scan(
		&user.ID, &user.Email, &hash, &user.DisplayName, &user.Role,
		&user.PetName, &user.PetType, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// GetUserByID fetches an account by its ID
func (s *service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	const q = `
		SELECT user_id, email, display_name, role, pet_name, pet_type, avatar_url, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`
	var user User
	err := s.db.QueryRow(ctx, q, userID).Scan(
		&user.ID, &user.Email, &user.DisplayName, &user.Role,
		&user.PetName, &user.PetType, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
