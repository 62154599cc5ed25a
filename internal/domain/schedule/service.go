package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orprep/orprep/internal/readiness"
)

// Notifier receives schedule lifecycle events.
type Notifier interface {
	ScheduleCreated(ctx context.Context, s *Schedule, actor string)
}

type Service struct {
	repo     Repository
	notifier Notifier
	logger   zerolog.Logger
}

func NewService(repo Repository, notifier Notifier, logger zerolog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusCompleted: true, StatusCanceled: true,
}

func validate(s *Schedule) error {
	if s.PatientMRN == "" {
		return fmt.Errorf("patient_mrn is required")
	}
	if s.PatientName == "" {
		return fmt.Errorf("patient_name is required")
	}
	if _, err := time.Parse("2006-01-02", s.ScheduledDate); err != nil {
		return fmt.Errorf("scheduled_date must be YYYY-MM-DD")
	}
	if s.Status == "" {
		s.Status = StatusScheduled
	}
	if !validStatuses[s.Status] {
		return fmt.Errorf("invalid status: %s", s.Status)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, sched *Schedule, actor string) error {
	if err := validate(sched); err != nil {
		return err
	}
	sched.CreatedBy = actor
	if err := s.repo.Create(ctx, sched); err != nil {
		return err
	}

	s.logger.Info().Str("mrn", sched.PatientMRN).Str("date", sched.ScheduledDate).
		Str("actor", actor).Msg("schedule created")
	if s.notifier != nil {
		s.notifier.ScheduleCreated(ctx, sched, actor)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in *Schedule) (*Schedule, error) {
	sched, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.PatientMRN != "" {
		sched.PatientMRN = in.PatientMRN
	}
	if in.PatientName != "" {
		sched.PatientName = in.PatientName
	}
	if in.Procedure != "" {
		sched.Procedure = in.Procedure
	}
	if in.Staff != "" {
		sched.Staff = in.Staff
	}
	if in.ScheduledDate != "" {
		sched.ScheduledDate = in.ScheduledDate
	}
	if in.ScheduledTime != "" {
		sched.ScheduledTime = in.ScheduledTime
	}
	if in.Status != "" {
		sched.Status = in.Status
	}
	if in.Priority != "" {
		sched.Priority = in.Priority
	}
	if in.Diagnosis != "" {
		sched.Diagnosis = in.Diagnosis
	}
	sched.IsAddon = in.IsAddon

	if err := validate(sched); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, sched); err != nil {
		return nil, err
	}
	return sched, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// View is a schedule decorated with the surgery countdown.
type View struct {
	*Schedule
	DaysUntil *int              `json:"days_until,omitempty"`
	Urgency   readiness.Urgency `json:"urgency"`
}

// List returns schedules decorated with days-until and urgency, evaluated
// against now.
func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int, now time.Time) ([]*View, int, error) {
	items, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	views := make([]*View, 0, len(items))
	for _, item := range items {
		views = append(views, &View{
			Schedule:  item,
			DaysUntil: readiness.DaysUntil(item.ScheduledDate, now),
			Urgency:   readiness.SurgeryUrgency(item.ScheduledDate, now),
		})
	}
	return views, total, nil
}

// NextSurgeryDate returns the patient's next scheduled date on or after now,
// or "" when nothing is booked.
func (s *Service) NextSurgeryDate(ctx context.Context, mrn string) (string, error) {
	return s.nextSurgeryDate(ctx, mrn, time.Now().UTC())
}

func (s *Service) nextSurgeryDate(ctx context.Context, mrn string, now time.Time) (string, error) {
	sched, err := s.repo.NextForPatient(ctx, mrn, now.Format("2006-01-02"))
	if err == ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return sched.ScheduledDate, nil
}

// ArchiveForPatient archives every schedule belonging to the MRN.
func (s *Service) ArchiveForPatient(ctx context.Context, mrn string) error {
	n, err := s.repo.ArchiveByMRN(ctx, mrn)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info().Str("mrn", mrn).Int("count", n).Msg("schedules archived")
	}
	return nil
}
