package terminology

import (
	"time"

	"github.com/google/uuid"
)

// CPTCode is one entry in the procedure-code catalog.
type CPTCode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	IsFavorite  bool   `json:"is_favorite"`
}

// UsageStat counts how often a user has entered a catalog value, for the
// frequently-used suggestion endpoints.
type UsageStat struct {
	ID         uuid.UUID `json:"id"`
	UserEmail  string    `json:"user_email"`
	ItemType   string    `json:"item_type"`
	ItemValue  string    `json:"item_value"`
	UsageCount int       `json:"usage_count"`
	FirstUsed  time.Time `json:"first_used"`
	LastUsed   time.Time `json:"last_used"`
}

// Usage item types.
const (
	ItemTypeCPT       = "cpt"
	ItemTypeDiagnosis = "diagnosis"
)
