package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a pre-operative case being tracked toward surgery readiness.
type Patient struct {
	ID             uuid.UUID       `json:"id"`
	MRN            string          `json:"mrn"`
	Name           string          `json:"name"`
	DOB            string          `json:"dob,omitempty"`
	Diagnosis      string          `json:"diagnosis,omitempty"`
	Procedures     string          `json:"procedures,omitempty"`
	ProcedureCode  string          `json:"procedure_code,omitempty"`
	Attending      string          `json:"attending,omitempty"`
	Status         string          `json:"status"`
	PrepChecklist  map[string]bool `json:"prep_checklist"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	CreatedBy      string          `json:"created_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedBy      string          `json:"updated_by,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Archived       bool            `json:"archived"`
	ArchivedAt     *time.Time      `json:"archived_at,omitempty"`
	ArchivedBy     string          `json:"archived_by,omitempty"`
	ArchivedReason string          `json:"archived_reason,omitempty"`
}

// Comment is a threaded note on a patient's case.
type Comment struct {
	ID            uuid.UUID `json:"id"`
	PatientID     uuid.UUID `json:"patient_id"`
	Body          string    `json:"body"`
	CreatedBy     string    `json:"created_by"`
	CreatedByName string    `json:"created_by_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Activity is one entry in a patient's append-only activity log.
type Activity struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Document is the dated clinical document metadata for one requirement kind.
// One row exists per (patient, kind); uploads replace the previous row.
type Document struct {
	ID           uuid.UUID `json:"id"`
	PatientID    uuid.UUID `json:"patient_id"`
	Kind         string    `json:"kind"`
	DocumentDate string    `json:"document_date"`
	FileName     string    `json:"file_name,omitempty"`
	Note         string    `json:"note,omitempty"`
	UploadedBy   string    `json:"uploaded_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Case status workflow.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusDeficient = "deficient"
	StatusInOR      = "in_or"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)
