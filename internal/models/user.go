package models

import "time"

// Role values stored on the user record and carried in token claims.
const (
	RoleRegular = "Regular"
	RoleAdmin   = "Admin"
)

// User represents a registered account. RefreshToken holds the single
// outstanding refresh token for the account; nil means no active session.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	RefreshToken *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
