package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no patient matches the requested MRN.
var ErrNotFound = errors.New("patient not found")

// ListFilter narrows List results.
type ListFilter struct {
	Status    string
	Archived  *bool
	Attending string
	Search    string // matches name or MRN
}

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByMRN(ctx context.Context, mrn string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, mrn string) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error)
	// ListCompletedBefore returns non-archived completed patients whose
	// completed_at is at or before cutoff.
	ListCompletedBefore(ctx context.Context, cutoff time.Time) ([]*Patient, error)

	AddComment(ctx context.Context, c *Comment) error
	ListComments(ctx context.Context, patientID uuid.UUID) ([]*Comment, error)

	AddActivity(ctx context.Context, a *Activity) error
	ListActivity(ctx context.Context, patientID uuid.UUID, limit int) ([]*Activity, error)

	UpsertDocument(ctx context.Context, d *Document) error
	ListDocuments(ctx context.Context, patientID uuid.UUID) ([]*Document, error)
}
