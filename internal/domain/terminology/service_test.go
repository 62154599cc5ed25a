package terminology

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockCPTRepo struct {
	codes map[string]*CPTCode
}

func newMockCPTRepo(codes ...*CPTCode) *mockCPTRepo {
	m := &mockCPTRepo{codes: map[string]*CPTCode{}}
	for _, c := range codes {
		cc := *c
		m.codes[cc.Code] = &cc
	}
	return m
}

func (m *mockCPTRepo) Search(_ context.Context, query string, limit int) ([]*CPTCode, error) {
	var out []*CPTCode
	q := strings.ToLower(query)
	for _, c := range m.codes {
		if strings.Contains(strings.ToLower(c.Code), q) || strings.Contains(strings.ToLower(c.Description), q) {
			out = append(out, c)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockCPTRepo) GetByCode(_ context.Context, code string) (*CPTCode, error) {
	c, ok := m.codes[code]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *mockCPTRepo) Categories(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, c := range m.codes {
		if c.Category != "" && !seen[c.Category] {
			seen[c.Category] = true
			out = append(out, c.Category)
		}
	}
	return out, nil
}

func (m *mockCPTRepo) ListByCategory(_ context.Context, category string, _ int) ([]*CPTCode, error) {
	var out []*CPTCode
	for _, c := range m.codes {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCPTRepo) ListFavorites(_ context.Context) ([]*CPTCode, error) {
	var out []*CPTCode
	for _, c := range m.codes {
		if c.IsFavorite {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCPTRepo) SetFavorite(_ context.Context, code string, favorite bool) error {
	c, ok := m.codes[code]
	if !ok {
		return ErrNotFound
	}
	c.IsFavorite = favorite
	return nil
}

type mockUsageRepo struct {
	stats map[string]*UsageStat
	err   error
}

func newMockUsageRepo() *mockUsageRepo {
	return &mockUsageRepo{stats: map[string]*UsageStat{}}
}

func (m *mockUsageRepo) Increment(_ context.Context, userEmail, itemType, itemValue string) error {
	if m.err != nil {
		return m.err
	}
	key := userEmail + "|" + itemType + "|" + itemValue
	if s, ok := m.stats[key]; ok {
		s.UsageCount++
		s.LastUsed = time.Now().UTC()
		return nil
	}
	now := time.Now().UTC()
	m.stats[key] = &UsageStat{
		ID: uuid.New(), UserEmail: userEmail, ItemType: itemType, ItemValue: itemValue,
		UsageCount: 1, FirstUsed: now, LastUsed: now,
	}
	return nil
}

func (m *mockUsageRepo) TopForUser(_ context.Context, userEmail, itemType string, limit int) ([]*UsageStat, error) {
	var out []*UsageStat
	for _, s := range m.stats {
		if s.UserEmail == userEmail && s.ItemType == itemType {
			out = append(out, s)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

var testCatalog = []*CPTCode{
	{Code: "21141", Description: "LeFort I single piece", Category: "orthognathic"},
	{Code: "21196", Description: "BSSO with fixation", Category: "orthognathic"},
	{Code: "21453", Description: "Closed treatment mandible fracture", Category: "trauma", IsFavorite: true},
}

func newTestService() (*Service, *mockUsageRepo) {
	usage := newMockUsageRepo()
	return NewService(newMockCPTRepo(testCatalog...), usage, zerolog.Nop()), usage
}

func TestService_SearchCPT(t *testing.T) {
	svc, _ := newTestService()

	codes, err := svc.SearchCPT(context.Background(), "bsso", 20)
	if err != nil {
		t.Fatalf("SearchCPT() error = %v", err)
	}
	if len(codes) != 1 || codes[0].Code != "21196" {
		t.Errorf("codes = %+v", codes)
	}

	if _, err := svc.SearchCPT(context.Background(), "", 20); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestService_LookupCPT_NotFound(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.LookupCPT(context.Background(), "99999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestService_Favorites(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	favorites, err := svc.ListFavorites(ctx)
	if err != nil {
		t.Fatalf("ListFavorites() error = %v", err)
	}
	if len(favorites) != 1 || favorites[0].Code != "21453" {
		t.Errorf("favorites = %+v", favorites)
	}

	if err := svc.SetFavorite(ctx, "21141", true); err != nil {
		t.Fatalf("SetFavorite() error = %v", err)
	}
	favorites, _ = svc.ListFavorites(ctx)
	if len(favorites) != 2 {
		t.Errorf("favorites after flag = %d, want 2", len(favorites))
	}

	if err := svc.SetFavorite(ctx, "99999", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestService_Track(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	svc.Track(ctx, "doc@example.com", ItemTypeCPT, "21141")
	svc.Track(ctx, "doc@example.com", ItemTypeCPT, "21141")
	svc.Track(ctx, "doc@example.com", ItemTypeDiagnosis, "Class III malocclusion")

	stats, err := svc.FrequentlyUsed(ctx, "doc@example.com", ItemTypeCPT, 10)
	if err != nil {
		t.Fatalf("FrequentlyUsed() error = %v", err)
	}
	if len(stats) != 1 || stats[0].UsageCount != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestService_Track_IgnoresInvalidInput(t *testing.T) {
	svc, usage := newTestService()
	ctx := context.Background()

	svc.Track(ctx, "", ItemTypeCPT, "21141")
	svc.Track(ctx, "doc@example.com", "bogus", "21141")
	svc.Track(ctx, "doc@example.com", ItemTypeCPT, "")

	if len(usage.stats) != 0 {
		t.Errorf("stats = %+v, want none recorded", usage.stats)
	}
}

func TestService_Track_SwallowsRepoError(t *testing.T) {
	usage := newMockUsageRepo()
	usage.err = errors.New("db down")
	svc := NewService(newMockCPTRepo(testCatalog...), usage, zerolog.Nop())

	// Must not panic or propagate.
	svc.Track(context.Background(), "doc@example.com", ItemTypeCPT, "21141")
}

func TestService_FrequentlyUsed_InvalidType(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.FrequentlyUsed(context.Background(), "doc@example.com", "bogus", 10); err == nil {
		t.Error("expected error for invalid item type")
	}
}
