package dto

import (
	"time"

	"github.com/yukikurage/renovation-tracker-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// RegisterResponse is returned by the register endpoint
type RegisterResponse struct {
	User UserDTO `json:"user"`
}

// LoginResponse carries the session token
type LoginResponse struct {
	Token     string    `json:"token"`
	UserID    uint64    `json:"userId"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}
