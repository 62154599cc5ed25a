package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Notifier receives task assignment events.
type Notifier interface {
	TaskAssigned(ctx context.Context, t *Task, actor string)
}

type Service struct {
	repo     Repository
	notifier Notifier
	logger   zerolog.Logger
}

func NewService(repo Repository, notifier Notifier, logger zerolog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

var validUrgencies = map[string]bool{
	"": true, "routine": true, "urgent": true, "stat": true,
}

func validate(t *Task) error {
	if t.PatientMRN == "" {
		return fmt.Errorf("patient_mrn is required")
	}
	if t.Description == "" {
		return fmt.Errorf("description is required")
	}
	if !validUrgencies[t.Urgency] {
		return fmt.Errorf("invalid urgency: %s", t.Urgency)
	}
	if t.DueDate != "" {
		if _, err := time.Parse("2006-01-02", t.DueDate); err != nil {
			return fmt.Errorf("due_date must be YYYY-MM-DD")
		}
	}
	if t.Status == "" {
		t.Status = StatusOpen
	}
	if t.Status != StatusOpen && t.Status != StatusDone {
		return fmt.Errorf("invalid status: %s", t.Status)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, t *Task, actor string) error {
	if err := validate(t); err != nil {
		return err
	}
	t.CreatedBy = actor
	if err := s.repo.Create(ctx, t); err != nil {
		return err
	}

	if s.notifier != nil && t.AssignedToEmail != "" && t.AssignedToEmail != actor {
		s.notifier.TaskAssigned(ctx, t, actor)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Task, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in *Task, actor string) (*Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	prevAssignee := t.AssignedToEmail

	if in.PatientMRN != "" {
		t.PatientMRN = in.PatientMRN
	}
	if in.Description != "" {
		t.Description = in.Description
	}
	if in.Urgency != "" {
		t.Urgency = in.Urgency
	}
	if in.AssignedTo != "" {
		t.AssignedTo = in.AssignedTo
	}
	if in.AssignedToEmail != "" {
		t.AssignedToEmail = in.AssignedToEmail
	}
	if in.DueDate != "" {
		t.DueDate = in.DueDate
	}
	if in.Status != "" {
		t.Status = in.Status
		t.Completed = in.Status == StatusDone
	}

	if err := validate(t); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	// Reassignment notifies the new assignee.
	if s.notifier != nil && t.AssignedToEmail != "" &&
		t.AssignedToEmail != prevAssignee && t.AssignedToEmail != actor {
		s.notifier.TaskAssigned(ctx, t, actor)
	}
	return t, nil
}

// ToggleComplete flips the task's done state.
func (s *Service) ToggleComplete(ctx context.Context, id uuid.UUID) (*Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	t.Completed = !t.Completed
	if t.Completed {
		t.Status = StatusDone
	} else {
		t.Status = StatusOpen
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
