package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no task matches the requested ID.
var ErrNotFound = errors.New("task not found")

// ListFilter narrows List results.
type ListFilter struct {
	PatientMRN      string
	AssignedToEmail string
	Completed       *bool
}

type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id uuid.UUID) (*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Task, int, error)
}
