package user

import (
	"time"

	domain "flexemi-backend/internal/domain/user"
)

type RegisterInput struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserDTO struct {
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

type SessionDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

func ToDTO(u *domain.User) UserDTO {
	return UserDTO{UserID: u.UserID, Email: u.Email, Name: u.DisplayName(), Role: u.Role, CreatedAt: u.CreatedAt}
}
