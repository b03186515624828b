package auth

import "time"

// Roles a PetPlaza account can hold
const (
	RolePetOwner = "PET_OWNER"
	RolePetLover = "PET_LOVER"
)

// User represents an account in the system
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	PetName     string    `json:"pet_name,omitempty"`
	PetType     string    `json:"pet_type,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RegisterRequest is the request payload for account creation
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	DisplayName string `json:"display_name" binding:"required,min=2,max=60"`
	Role        string `json:"role" binding:"required,oneof=PET_OWNER PET_LOVER"`
	PetName     string `json:"pet_name,omitempty" binding:"omitempty,max=60"`
	PetType     string `json:"pet_type,omitempty" binding:"omitempty,max=60"`
	AvatarURL   string `json:"avatar_url,omitempty" binding:"omitempty,max=500"`
}

// LoginRequest is the request payload for signing in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the response after successful authentication
type AuthResponse struct {
	User      *User  `json:"user"`
	SessionID string `json:"session_id"`
}
