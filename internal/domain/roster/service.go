package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validateMember(name, email string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	return nil
}

func (s *Service) CreateResident(ctx context.Context, r *Resident, actor string) error {
	if err := validateMember(r.Name, r.Email); err != nil {
		return err
	}
	r.IsActive = true
	r.CreatedBy = actor
	return s.repo.CreateResident(ctx, r)
}

func (s *Service) GetResident(ctx context.Context, id uuid.UUID) (*Resident, error) {
	return s.repo.GetResident(ctx, id)
}

func (s *Service) UpdateResident(ctx context.Context, id uuid.UUID, in *Resident) (*Resident, error) {
	r, err := s.repo.GetResident(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		r.Name = in.Name
	}
	if in.Email != "" {
		r.Email = in.Email
	}
	if in.Hospital != "" {
		r.Hospital = in.Hospital
	}
	if in.Specialty != "" {
		r.Specialty = in.Specialty
	}
	if in.PGYYear != 0 {
		r.PGYYear = in.PGYYear
	}
	r.IsActive = in.IsActive
	if err := validateMember(r.Name, r.Email); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateResident(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) DeleteResident(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteResident(ctx, id)
}

func (s *Service) ListResidents(ctx context.Context, f ListFilter) ([]*Resident, error) {
	return s.repo.ListResidents(ctx, f)
}

// ActiveResidentEmails returns the emails of every active resident, for
// notification fan-out.
func (s *Service) ActiveResidentEmails(ctx context.Context) ([]string, error) {
	active := true
	residents, err := s.repo.ListResidents(ctx, ListFilter{Active: &active})
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(residents))
	for _, r := range residents {
		emails = append(emails, r.Email)
	}
	return emails, nil
}

func (s *Service) CreateAttending(ctx context.Context, a *Attending, actor string) error {
	if err := validateMember(a.Name, a.Email); err != nil {
		return err
	}
	a.IsActive = true
	a.CreatedBy = actor
	return s.repo.CreateAttending(ctx, a)
}

func (s *Service) GetAttending(ctx context.Context, id uuid.UUID) (*Attending, error) {
	return s.repo.GetAttending(ctx, id)
}

func (s *Service) UpdateAttending(ctx context.Context, id uuid.UUID, in *Attending) (*Attending, error) {
	a, err := s.repo.GetAttending(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		a.Name = in.Name
	}
	if in.Email != "" {
		a.Email = in.Email
	}
	if in.Hospital != "" {
		a.Hospital = in.Hospital
	}
	if in.Specialty != "" {
		a.Specialty = in.Specialty
	}
	a.IsActive = in.IsActive
	if err := validateMember(a.Name, a.Email); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAttending(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) DeleteAttending(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteAttending(ctx, id)
}

func (s *Service) ListAttendings(ctx context.Context, f ListFilter) ([]*Attending, error) {
	return s.repo.ListAttendings(ctx, f)
}
