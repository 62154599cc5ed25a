package user

import (
	"time"

	"github.com/google/uuid"
)

// User is a dashboard account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Roles.
const (
	RoleResident  = "resident"
	RoleAttending = "attending"
	RoleAdmin     = "admin"
)
