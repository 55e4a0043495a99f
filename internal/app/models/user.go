package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID            string    `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"` // bcrypt hash, never serialized
	FullName      string    `json:"fullName" db:"full_name"`
	ContactNumber *string   `json:"contactNumber" db:"contact_number"`
	Role          Role      `json:"role" db:"role"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// Teacher defines the teacher model based on the 'teachers' table
type Teacher struct {
	ID         string `json:"id" db:"id"`
	UserID     string `json:"userId" db:"user_id"`
	Department string `json:"department" db:"department"`
}
