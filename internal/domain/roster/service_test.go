package roster

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	residents  map[uuid.UUID]*Resident
	attendings map[uuid.UUID]*Attending
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		residents:  map[uuid.UUID]*Resident{},
		attendings: map[uuid.UUID]*Attending{},
	}
}

func (m *mockRepo) CreateResident(_ context.Context, r *Resident) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now().UTC()
	m.residents[r.ID] = r
	return nil
}

func (m *mockRepo) GetResident(_ context.Context, id uuid.UUID) (*Resident, error) {
	r, ok := m.residents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *mockRepo) UpdateResident(_ context.Context, r *Resident) error {
	if _, ok := m.residents[r.ID]; !ok {
		return ErrNotFound
	}
	m.residents[r.ID] = r
	return nil
}

func (m *mockRepo) DeleteResident(_ context.Context, id uuid.UUID) error {
	if _, ok := m.residents[id]; !ok {
		return ErrNotFound
	}
	delete(m.residents, id)
	return nil
}

func (m *mockRepo) ListResidents(_ context.Context, f ListFilter) ([]*Resident, error) {
	var out []*Resident
	for _, r := range m.residents {
		if f.Hospital != "" && r.Hospital != f.Hospital {
			continue
		}
		if f.Active != nil && r.IsActive != *f.Active {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRepo) CreateAttending(_ context.Context, a *Attending) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	m.attendings[a.ID] = a
	return nil
}

func (m *mockRepo) GetAttending(_ context.Context, id uuid.UUID) (*Attending, error) {
	a, ok := m.attendings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *mockRepo) UpdateAttending(_ context.Context, a *Attending) error {
	if _, ok := m.attendings[a.ID]; !ok {
		return ErrNotFound
	}
	m.attendings[a.ID] = a
	return nil
}

func (m *mockRepo) DeleteAttending(_ context.Context, id uuid.UUID) error {
	if _, ok := m.attendings[id]; !ok {
		return ErrNotFound
	}
	delete(m.attendings, id)
	return nil
}

func (m *mockRepo) ListAttendings(_ context.Context, f ListFilter) ([]*Attending, error) {
	var out []*Attending
	for _, a := range m.attendings {
		if f.Hospital != "" && a.Hospital != f.Hospital {
			continue
		}
		if f.Active != nil && a.IsActive != *f.Active {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func TestService_CreateResident(t *testing.T) {
	svc := NewService(newMockRepo())

	r := &Resident{Name: "Alex Kim", Email: "akim@example.com", Hospital: "General", PGYYear: 3}
	if err := svc.CreateResident(context.Background(), r, "chief@example.com"); err != nil {
		t.Fatalf("CreateResident() error = %v", err)
	}
	if !r.IsActive {
		t.Error("new resident not active")
	}
	if r.CreatedBy != "chief@example.com" {
		t.Errorf("CreatedBy = %s", r.CreatedBy)
	}
}

func TestService_CreateResident_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	if err := svc.CreateResident(context.Background(), &Resident{Email: "x@example.com"}, "a"); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.CreateResident(context.Background(), &Resident{Name: "X", Email: "not-an-email"}, "a"); err == nil {
		t.Error("expected error for bad email")
	}
}

func TestService_ActiveResidentEmails(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	for _, r := range []*Resident{
		{Name: "A", Email: "a@example.com"},
		{Name: "B", Email: "b@example.com"},
	} {
		if err := svc.CreateResident(context.Background(), r, "chief@example.com"); err != nil {
			t.Fatalf("CreateResident() error = %v", err)
		}
	}
	inactive := &Resident{Name: "C", Email: "c@example.com"}
	if err := svc.CreateResident(context.Background(), inactive, "chief@example.com"); err != nil {
		t.Fatalf("CreateResident() error = %v", err)
	}
	inactive.IsActive = false

	emails, err := svc.ActiveResidentEmails(context.Background())
	if err != nil {
		t.Fatalf("ActiveResidentEmails() error = %v", err)
	}
	if len(emails) != 2 {
		t.Errorf("emails = %v, want 2 active", emails)
	}
	for _, e := range emails {
		if e == "c@example.com" {
			t.Error("inactive resident included")
		}
	}
}

func TestService_UpdateResident_Deactivate(t *testing.T) {
	svc := NewService(newMockRepo())

	r := &Resident{Name: "Alex Kim", Email: "akim@example.com"}
	if err := svc.CreateResident(context.Background(), r, "chief@example.com"); err != nil {
		t.Fatalf("CreateResident() error = %v", err)
	}

	updated, err := svc.UpdateResident(context.Background(), r.ID, &Resident{IsActive: false})
	if err != nil {
		t.Fatalf("UpdateResident() error = %v", err)
	}
	if updated.IsActive {
		t.Error("resident still active after deactivation")
	}
	if updated.Name != "Alex Kim" {
		t.Errorf("Name = %s, partial update clobbered fields", updated.Name)
	}
}

func TestService_ListAttendings_HospitalFilter(t *testing.T) {
	svc := NewService(newMockRepo())

	for _, a := range []*Attending{
		{Name: "Dr. A", Email: "a@example.com", Hospital: "General"},
		{Name: "Dr. B", Email: "b@example.com", Hospital: "Childrens"},
	} {
		if err := svc.CreateAttending(context.Background(), a, "chief@example.com"); err != nil {
			t.Fatalf("CreateAttending() error = %v", err)
		}
	}

	got, err := svc.ListAttendings(context.Background(), ListFilter{Hospital: "General"})
	if err != nil {
		t.Fatalf("ListAttendings() error = %v", err)
	}
	if len(got) != 1 || got[0].Hospital != "General" {
		t.Errorf("got = %+v", got)
	}
}

func TestService_GetUnknownAttending(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, err := svc.GetAttending(context.Background(), uuid.New()); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
