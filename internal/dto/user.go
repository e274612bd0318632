package dto

import (
	"time"

	"github.com/yukikurage/taskflow-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	FullName  string          `json:"full_name"`
	Role      models.UserRole `json:"role"`
	CreatedAt time.Time       `json:"created_at"`
}

// UserSummaryDTO carries the display fields joined onto tasks and notes
type UserSummaryDTO struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, user := range users {
		out[i] = ToUserDTO(user)
	}
	return out
}

func toUserSummary(user models.User) *UserSummaryDTO {
	if user.ID == "" {
		return nil
	}
	return &UserSummaryDTO{FullName: user.FullName, Email: user.Email}
}
