package task

import (
	"time"

	"github.com/google/uuid"
)

// Task is a prep to-do attached to a case.
type Task struct {
	ID              uuid.UUID `json:"id"`
	PatientMRN      string    `json:"patient_mrn"`
	Description     string    `json:"description"`
	Urgency         string    `json:"urgency,omitempty"`
	AssignedTo      string    `json:"assigned_to,omitempty"`
	AssignedToEmail string    `json:"assigned_to_email,omitempty"`
	DueDate         string    `json:"due_date,omitempty"`
	Status          string    `json:"status"`
	Completed       bool      `json:"completed"`
	CreatedBy       string    `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

const (
	StatusOpen = "open"
	StatusDone = "done"
)
