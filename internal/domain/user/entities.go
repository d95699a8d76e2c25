package user

import (
	"fmt"
	"time"

	"flexemi-backend/internal/domain/errs"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleLender   Role = "LENDER"
	RoleBorrower Role = "BORROWER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLender, RoleBorrower:
		return true
	}
	return false
}

var (
	ErrNotFound           = fmt.Errorf("user %w", errs.ErrNotFound)
	ErrEmailTaken         = errs.Invalid("email", "is already registered")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", errs.ErrUnauthorized)
)

type User struct {
	ID           uint64         `gorm:"primaryKey;column:id" json:"-"`
	UserID       string         `gorm:"size:32;uniqueIndex:ux_users_user_id" json:"user_id"`
	Email        string         `gorm:"size:255;uniqueIndex:ux_users_email" json:"email"`
	Name         string         `gorm:"size:255" json:"name"`
	Role         Role           `gorm:"size:16;index" json:"role"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// DisplayName falls back to the email when no name was given.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Actor is the authenticated caller. Every guarded operation receives it explicitly.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) Authenticated() bool { return a.UserID != "" && a.Role.Valid() }

func (a Actor) Is(r Role) bool { return a.Authenticated() && a.Role == r }
