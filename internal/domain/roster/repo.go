package roster

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no roster member matches the requested ID.
var ErrNotFound = errors.New("roster member not found")

// ListFilter narrows roster listings.
type ListFilter struct {
	Hospital string
	Active   *bool
}

type Repository interface {
	CreateResident(ctx context.Context, r *Resident) error
	GetResident(ctx context.Context, id uuid.UUID) (*Resident, error)
	UpdateResident(ctx context.Context, r *Resident) error
	DeleteResident(ctx context.Context, id uuid.UUID) error
	ListResidents(ctx context.Context, f ListFilter) ([]*Resident, error)

	CreateAttending(ctx context.Context, a *Attending) error
	GetAttending(ctx context.Context, id uuid.UUID) (*Attending, error)
	UpdateAttending(ctx context.Context, a *Attending) error
	DeleteAttending(ctx context.Context, id uuid.UUID) error
	ListAttendings(ctx context.Context, f ListFilter) ([]*Attending, error)
}
