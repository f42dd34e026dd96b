package dto

import (
	"time"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest payload. Role is read so it can be ignored; registration never grants it.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role,omitempty"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresAt   time.Time         `json:"expires_at"`
	User        domain.PublicUser `json:"user"`
}

// NewAuthResponse builds the response for a session.
func NewAuthResponse(s *domain.Session) AuthResponse {
	return AuthResponse{
		AccessToken: s.Token,
		TokenType:   "bearer",
		ExpiresAt:   s.ExpiresAt,
		User:        s.User.Public(),
	}
}
