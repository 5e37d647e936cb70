package models

import (
	"time"
)

// Role enumerates authorization roles assigned to users.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// UserDB represents a user record in the database
type UserDB struct {
	ID           int64     `json:"id" db:"id"`                 // Primary key
	Username     string    `json:"username" db:"username"`     // Display name
	Email        string    `json:"email" db:"email"`           // Unique email
	PasswordHash string    `json:"-" db:"password_hash"`       // Hashed password, never serialized
	Avatar       *string   `json:"avatar" db:"avatar"`         // Optional avatar URL
	Confirmed    bool      `json:"confirmed" db:"confirmed"`   // Email confirmation flag
	Role         Role      `json:"role" db:"role"`             // Authorization role
	RefreshToken *string   `json:"-" db:"refresh_token"`       // Single active refresh token
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // Creation timestamp
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // Last update timestamp
}
