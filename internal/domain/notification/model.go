package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is one in-app inbox entry for a recipient.
type Notification struct {
	ID             uuid.UUID  `json:"id"`
	RecipientEmail string     `json:"recipient_email"`
	RecipientName  string     `json:"recipient_name,omitempty"`
	Kind           string     `json:"kind"`
	Title          string     `json:"title"`
	Message        string     `json:"message,omitempty"`
	CaseMRN        string     `json:"case_mrn,omitempty"`
	TaskID         *uuid.UUID `json:"task_id,omitempty"`
	Read           bool       `json:"read"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Notification kinds.
const (
	KindCaseAdded     = "case_added"
	KindTaskAssigned  = "task_assigned"
	KindStatusChanged = "status_changed"
)
