package model

import "time"

// User represents a registered account (for internal storage).
type User struct {
	ID           string    `json:"id"`           // UUID
	Name         string    `json:"name"`         // Display name
	Email        string    `json:"email"`        // Email address (unique)
	PasswordHash string    `json:"passwordHash"` // Bcrypt hash, never exposed in API responses
	CreatedAt    time.Time `json:"createdAt"`    // Registration timestamp
}

// UserResponse represents user data for API responses (excludes the hash).
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToResponse converts User to UserResponse (removes sensitive data).
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// RegisterRequest represents user registration data.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login: the user's public fields
// plus a freshly issued bearer token.
type AuthResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}
