// Package notify provides email notification delivery with template
// rendering, a pluggable sender, and bounded retry.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EmailSender is the interface for sending email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// LogSender writes outbound email to the structured log instead of a mail
// relay. Used in development and when EMAIL_ENABLED is off.
type LogSender struct {
	Logger zerolog.Logger
}

func (s *LogSender) SendEmail(_ context.Context, to, subject, body string) error {
	s.Logger.Info().
		Str("to", to).
		Str("subject", subject).
		Int("body_len", len(body)).
		Msg("email (log only)")
	return nil
}

// Template defines a reusable notification template.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "case-added",
			Name:    "Case Added",
			Subject: "New case: {{patient_name}} on {{surgery_date}}",
			Body:    "A new case for {{patient_name}} (MRN {{mrn}}) has been scheduled for {{surgery_date}} with {{attending}}.",
		},
		{
			ID:      "task-assigned",
			Name:    "Task Assigned",
			Subject: "Task assigned: {{task_title}}",
			Body:    "{{assigner}} assigned you a task: {{task_title}}. Due {{due_date}}.",
		},
		{
			ID:      "patient-in-or",
			Name:    "Patient Sent to OR",
			Subject: "{{patient_name}} sent to OR",
			Body:    "{{patient_name}} (MRN {{mrn}}) was sent to the OR by {{sender}} at {{time}}.",
		},
		{
			ID:      "document-expiring",
			Name:    "Document Expiring",
			Subject: "Document expiring for {{patient_name}}",
			Body:    "The {{document}} for {{patient_name}} (MRN {{mrn}}) expires in {{days_left}} days. Surgery is scheduled for {{surgery_date}}.",
		},
		{
			ID:      "patient-deficient",
			Name:    "Patient Marked Deficient",
			Subject: "Deficiency flagged: {{patient_name}}",
			Body:    "{{patient_name}} (MRN {{mrn}}) was marked deficient: {{reason}}.",
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are
// left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// Mailer renders templates and delivers email through the configured sender,
// retrying transient failures a bounded number of times.
type Mailer struct {
	sender     EmailSender
	templates  *TemplateEngine
	logger     zerolog.Logger
	maxRetries int
	retryDelay time.Duration
}

// NewMailer constructs a Mailer. Deliveries are attempted up to three times
// with a short delay between attempts.
func NewMailer(sender EmailSender, templates *TemplateEngine, logger zerolog.Logger) *Mailer {
	return &Mailer{
		sender:     sender,
		templates:  templates,
		logger:     logger,
		maxRetries: 2,
		retryDelay: 500 * time.Millisecond,
	}
}

// Send renders templateID with data and delivers the result to each
// recipient. Per-recipient failures are logged and collected; one bad address
// does not stop the rest.
func (m *Mailer) Send(ctx context.Context, templateID string, data map[string]string, recipients []string) error {
	subject, body, err := m.templates.Render(templateID, data)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	var errs []error
	for _, to := range recipients {
		if to == "" {
			continue
		}
		if err := m.sendWithRetry(ctx, to, subject, body); err != nil {
			m.logger.Error().Err(err).
				Str("template", templateID).
				Str("to", to).
				Msg("email delivery failed")
			errs = append(errs, fmt.Errorf("send to %s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Mailer) sendWithRetry(ctx context.Context, to, subject, body string) error {
	var lastErr error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.retryDelay):
			}
		}
		if lastErr = m.sender.SendEmail(ctx, to, subject, body); lastErr == nil {
			return nil
		}
	}
	return lastErr
}
