package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Schedule is one booked (or add-on) OR case.
type Schedule struct {
	ID            uuid.UUID `json:"id"`
	PatientMRN    string    `json:"patient_mrn"`
	PatientName   string    `json:"patient_name"`
	Procedure     string    `json:"procedure,omitempty"`
	Staff         string    `json:"staff,omitempty"`
	ScheduledDate string    `json:"scheduled_date"`
	ScheduledTime string    `json:"scheduled_time,omitempty"`
	Status        string    `json:"status"`
	IsAddon       bool      `json:"is_addon"`
	Priority      string    `json:"priority,omitempty"`
	Diagnosis     string    `json:"diagnosis,omitempty"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	Archived      bool      `json:"archived"`
}

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
)
