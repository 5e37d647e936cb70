package models

import (
	"time"
)

// ContactDB represents a contact record owned by a user
type ContactDB struct {
	ID          int64     `json:"id" db:"id"`                     // Primary key
	FirstName   string    `json:"first_name" db:"first_name"`     // First name
	LastName    string    `json:"last_name" db:"last_name"`       // Last name
	Email       string    `json:"email" db:"email"`               // Contact email
	PhoneNumber string    `json:"phone_number" db:"phone_number"` // Phone number
	Birthday    time.Time `json:"birthday" db:"birthday"`         // Date of birth
	Data        *string   `json:"data" db:"data"`                 // Optional free-form data
	UserID      int64     `json:"user_id" db:"user_id"`           // Owning user, immutable after creation
	CreatedAt   time.Time `json:"created_at" db:"created_at"`     // Creation timestamp
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`     // Last update timestamp
}
