package user

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/orprep/orprep/internal/platform/auth"
)

type mockRepo struct {
	users map[string]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: map[string]*User{}}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	if _, ok := m.users[u.Email]; ok {
		return ErrDuplicateEmail
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC()
	m.users[u.Email] = u
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) List(_ context.Context) ([]*User, error) {
	var out []*User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func newTestService() *Service {
	return NewService(newMockRepo(), auth.NewTokenIssuer("test-secret", time.Hour))
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "Doc@Example.com", "s3cret-pass", "Dr. Doe", RoleAttending)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.Email != "doc@example.com" {
		t.Errorf("Email = %s, want lowercased", u.Email)
	}
	if u.PasswordHash == "s3cret-pass" || u.PasswordHash == "" {
		t.Error("password stored in the clear or empty")
	}

	got, token, err := svc.Login(ctx, "doc@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if got.ID != u.ID || token == "" {
		t.Errorf("login user = %+v token = %q", got, token)
	}

	claims, err := auth.NewTokenIssuer("test-secret", time.Hour).Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.Subject != u.ID.String() || claims.Role != RoleAttending || claims.Name != "Dr. Doe" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestService_Login_WrongPassword(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "doc@example.com", "s3cret-pass", "Dr. Doe", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, _, err := svc.Login(ctx, "doc@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "s3cret-pass"); err != ErrInvalidCredentials {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}

func TestService_Register_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		fullName string
		role     string
	}{
		{"BadEmail", "not-an-email", "s3cret-pass", "X", ""},
		{"ShortPassword", "a@example.com", "short", "X", ""},
		{"MissingName", "a@example.com", "s3cret-pass", "", ""},
		{"BadRole", "a@example.com", "s3cret-pass", "X", "superuser"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.email, tt.password, tt.fullName, tt.role); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestService_Register_DefaultRole(t *testing.T) {
	svc := newTestService()

	u, err := svc.Register(context.Background(), "res@example.com", "s3cret-pass", "Res One", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.Role != RoleResident {
		t.Errorf("Role = %s, want %s", u.Role, RoleResident)
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "doc@example.com", "s3cret-pass", "Dr. Doe", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Register(ctx, "doc@example.com", "other-pass99", "Dr. Two", ""); err != ErrDuplicateEmail {
		t.Errorf("err = %v, want ErrDuplicateEmail", err)
	}
}
