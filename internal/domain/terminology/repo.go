package terminology

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no code matches the lookup.
var ErrNotFound = errors.New("code not found")

// CPTRepository provides access to the CPT procedure-code catalog.
type CPTRepository interface {
	Search(ctx context.Context, query string, limit int) ([]*CPTCode, error)
	GetByCode(ctx context.Context, code string) (*CPTCode, error)
	Categories(ctx context.Context) ([]string, error)
	ListByCategory(ctx context.Context, category string, limit int) ([]*CPTCode, error)
	ListFavorites(ctx context.Context) ([]*CPTCode, error)
	SetFavorite(ctx context.Context, code string, favorite bool) error
}

// UsageRepository records per-user catalog usage counts.
type UsageRepository interface {
	Increment(ctx context.Context, userEmail, itemType, itemValue string) error
	TopForUser(ctx context.Context, userEmail, itemType string, limit int) ([]*UsageStat, error)
}
