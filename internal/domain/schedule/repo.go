package schedule

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no schedule matches the requested ID.
var ErrNotFound = errors.New("schedule not found")

// ListFilter narrows List results.
type ListFilter struct {
	PatientMRN string
	Status     string
	Archived   *bool
	From       string // scheduled_date >= From (YYYY-MM-DD)
	To         string // scheduled_date <= To
}

type Repository interface {
	Create(ctx context.Context, s *Schedule) error
	Get(ctx context.Context, id uuid.UUID) (*Schedule, error)
	Update(ctx context.Context, s *Schedule) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Schedule, int, error)
	// NextForPatient returns the earliest non-archived schedule on or after
	// the given date for the MRN, or ErrNotFound.
	NextForPatient(ctx context.Context, mrn, onOrAfter string) (*Schedule, error)
	// ArchiveByMRN flags every schedule for the MRN as archived and returns
	// the number of rows touched.
	ArchiveByMRN(ctx context.Context, mrn string) (int, error)
}
