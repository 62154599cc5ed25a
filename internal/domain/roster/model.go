package roster

import (
	"time"

	"github.com/google/uuid"
)

// Resident is a trainee on the service roster.
type Resident struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Hospital  string    `json:"hospital,omitempty"`
	Specialty string    `json:"specialty,omitempty"`
	PGYYear   int       `json:"pgy_year,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Attending is a supervising surgeon on the roster.
type Attending struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Hospital  string    `json:"hospital,omitempty"`
	Specialty string    `json:"specialty,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
