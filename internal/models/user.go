package models

import "time"

// Role is the capability claim carried on a user record.
type Role string

const (
	RoleGuest Role = "guest"
	RoleAdmin Role = "admin"
)

// User represents a registered account.
type User struct {
	ID           int       `json:"id"`
	Nickname     string    `json:"nickname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds administrative capabilities.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
