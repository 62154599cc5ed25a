package terminology

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Service provides CPT catalog lookups and per-user usage tracking.
type Service struct {
	cpt    CPTRepository
	usage  UsageRepository
	logger zerolog.Logger
}

func NewService(cpt CPTRepository, usage UsageRepository, logger zerolog.Logger) *Service {
	return &Service{cpt: cpt, usage: usage, logger: logger}
}

// SearchCPT searches the catalog by code or description.
func (s *Service) SearchCPT(ctx context.Context, query string, limit int) ([]*CPTCode, error) {
	if query == "" {
		return nil, fmt.Errorf("query parameter is required")
	}
	if limit <= 0 {
		limit = 20
	}
	return s.cpt.Search(ctx, query, limit)
}

// LookupCPT looks up a single code.
func (s *Service) LookupCPT(ctx context.Context, code string) (*CPTCode, error) {
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}
	return s.cpt.GetByCode(ctx, code)
}

// Categories lists the catalog's distinct categories.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.cpt.Categories(ctx)
}

// ListByCategory lists codes in one category.
func (s *Service) ListByCategory(ctx context.Context, category string, limit int) ([]*CPTCode, error) {
	if category == "" {
		return nil, fmt.Errorf("category is required")
	}
	if limit <= 0 {
		limit = 50
	}
	return s.cpt.ListByCategory(ctx, category, limit)
}

// ListFavorites lists the flagged codes.
func (s *Service) ListFavorites(ctx context.Context) ([]*CPTCode, error) {
	return s.cpt.ListFavorites(ctx)
}

// SetFavorite flags or unflags a code.
func (s *Service) SetFavorite(ctx context.Context, code string, favorite bool) error {
	if code == "" {
		return fmt.Errorf("code is required")
	}
	return s.cpt.SetFavorite(ctx, code, favorite)
}

var validItemTypes = map[string]bool{
	ItemTypeCPT: true, ItemTypeDiagnosis: true,
}

// Track increments the usage counter for one user/value pair. Failures are
// logged and swallowed: usage stats are advisory and must never fail the
// operation that produced them.
func (s *Service) Track(ctx context.Context, userEmail, itemType, itemValue string) {
	if userEmail == "" || itemValue == "" || !validItemTypes[itemType] {
		return
	}
	if err := s.usage.Increment(ctx, userEmail, itemType, itemValue); err != nil {
		s.logger.Error().Err(err).Str("user", userEmail).Str("type", itemType).
			Msg("usage tracking failed")
	}
}

// FrequentlyUsed returns the user's most-used values of one type.
func (s *Service) FrequentlyUsed(ctx context.Context, userEmail, itemType string, limit int) ([]*UsageStat, error) {
	if !validItemTypes[itemType] {
		return nil, fmt.Errorf("invalid item type: %s", itemType)
	}
	if limit <= 0 {
		limit = 10
	}
	return s.usage.TopForUser(ctx, userEmail, itemType, limit)
}
