package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/orprep/orprep/internal/domain/patient"
	"github.com/orprep/orprep/internal/domain/schedule"
	"github.com/orprep/orprep/internal/domain/task"
	"github.com/orprep/orprep/internal/platform/notify"
)

// RosterSource supplies notification fan-out targets.
type RosterSource interface {
	ActiveResidentEmails(ctx context.Context) ([]string, error)
}

// Dispatcher turns case, schedule, and task lifecycle events into in-app
// notifications and optional email. It implements the Notifier interfaces
// the domain services hang their events on. Delivery failures are logged,
// never propagated: a down mail relay must not block a status change.
type Dispatcher struct {
	svc    *Service
	roster RosterSource
	mailer *notify.Mailer
	logger zerolog.Logger
}

// NewDispatcher creates a Dispatcher. mailer may be nil to disable email.
func NewDispatcher(svc *Service, roster RosterSource, mailer *notify.Mailer, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{svc: svc, roster: roster, mailer: mailer, logger: logger}
}

func (d *Dispatcher) residentsExcept(ctx context.Context, actor string) []string {
	emails, err := d.roster.ActiveResidentEmails(ctx)
	if err != nil {
		d.logger.Error().Err(err).Msg("resident lookup for notification fan-out failed")
		return nil
	}
	out := emails[:0]
	for _, e := range emails {
		if e != actor {
			out = append(out, e)
		}
	}
	return out
}

func (d *Dispatcher) store(ctx context.Context, n *Notification) {
	if err := d.svc.Create(ctx, n); err != nil {
		d.logger.Error().Err(err).Str("recipient", n.RecipientEmail).
			Str("kind", n.Kind).Msg("notification write failed")
	}
}

func (d *Dispatcher) email(ctx context.Context, templateID string, data map[string]string, recipients []string) {
	if d.mailer == nil || len(recipients) == 0 {
		return
	}
	if err := d.mailer.Send(ctx, templateID, data, recipients); err != nil {
		d.logger.Error().Err(err).Str("template", templateID).Msg("notification email failed")
	}
}

func (d *Dispatcher) fanOut(ctx context.Context, actor string, build func(recipient string) *Notification, templateID string, data map[string]string) {
	recipients := d.residentsExcept(ctx, actor)
	for _, email := range recipients {
		d.store(ctx, build(email))
	}
	d.email(ctx, templateID, data, recipients)
}

// ScheduleCreated notifies every active resident except the creator.
func (d *Dispatcher) ScheduleCreated(ctx context.Context, s *schedule.Schedule, actor string) {
	title := fmt.Sprintf("New case: %s on %s", s.PatientName, s.ScheduledDate)
	d.fanOut(ctx, actor,
		func(recipient string) *Notification {
			return &Notification{
				RecipientEmail: recipient,
				Kind:           KindCaseAdded,
				Title:          title,
				Message:        s.Procedure,
				CaseMRN:        s.PatientMRN,
			}
		},
		"case-added", map[string]string{
			"patient_name": s.PatientName,
			"mrn":          s.PatientMRN,
			"surgery_date": s.ScheduledDate,
			"attending":    s.Staff,
		})
}

// TaskAssigned notifies the assignee.
func (d *Dispatcher) TaskAssigned(ctx context.Context, t *task.Task, actor string) {
	id := t.ID
	d.store(ctx, &Notification{
		RecipientEmail: t.AssignedToEmail,
		RecipientName:  t.AssignedTo,
		Kind:           KindTaskAssigned,
		Title:          fmt.Sprintf("Task assigned: %s", t.Description),
		Message:        fmt.Sprintf("Assigned by %s", actor),
		CaseMRN:        t.PatientMRN,
		TaskID:         &id,
	})
	d.email(ctx, "task-assigned", map[string]string{
		"task_title": t.Description,
		"assigner":   actor,
		"due_date":   t.DueDate,
	}, []string{t.AssignedToEmail})
}

// PatientSentToOR notifies every active resident except the actor.
func (d *Dispatcher) PatientSentToOR(ctx context.Context, p *patient.Patient, actor string) {
	title := fmt.Sprintf("%s sent to OR", p.Name)
	d.fanOut(ctx, actor,
		func(recipient string) *Notification {
			return &Notification{
				RecipientEmail: recipient,
				Kind:           KindStatusChanged,
				Title:          title,
				Message:        fmt.Sprintf("Sent by %s", actor),
				CaseMRN:        p.MRN,
			}
		},
		"patient-in-or", map[string]string{
			"patient_name": p.Name,
			"mrn":          p.MRN,
			"sender":       actor,
			"time":         time.Now().UTC().Format(time.RFC3339),
		})
}

// PatientCompleted notifies every active resident except the actor.
func (d *Dispatcher) PatientCompleted(ctx context.Context, p *patient.Patient, actor string) {
	title := fmt.Sprintf("Case completed: %s", p.Name)
	recipients := d.residentsExcept(ctx, actor)
	for _, email := range recipients {
		d.store(ctx, &Notification{
			RecipientEmail: email,
			Kind:           KindStatusChanged,
			Title:          title,
			Message:        fmt.Sprintf("Completed by %s", actor),
			CaseMRN:        p.MRN,
		})
	}
}

// PatientDeficient notifies every active resident except the actor,
// carrying the deficiency reason.
func (d *Dispatcher) PatientDeficient(ctx context.Context, p *patient.Patient, actor, reason string) {
	title := fmt.Sprintf("Deficiency flagged: %s", p.Name)
	d.fanOut(ctx, actor,
		func(recipient string) *Notification {
			return &Notification{
				RecipientEmail: recipient,
				Kind:           KindStatusChanged,
				Title:          title,
				Message:        reason,
				CaseMRN:        p.MRN,
			}
		},
		"patient-deficient", map[string]string{
			"patient_name": p.Name,
			"mrn":          p.MRN,
			"reason":       reason,
		})
}
