package patient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/orprep/orprep/internal/readiness"
)

// Notifier receives case lifecycle events. Implementations fan the event out
// to in-app notifications and email.
type Notifier interface {
	PatientSentToOR(ctx context.Context, p *Patient, actor string)
	PatientCompleted(ctx context.Context, p *Patient, actor string)
	PatientDeficient(ctx context.Context, p *Patient, actor, reason string)
}

// UsageTracker records catalog values used on cases, feeding the
// frequently-used suggestions.
type UsageTracker interface {
	Track(ctx context.Context, userEmail, itemType, itemValue string)
}

// ScheduleSource resolves the patient's next scheduled surgery date
// ("YYYY-MM-DD", or "" when none is booked) and archives a patient's
// schedules alongside the case.
type ScheduleSource interface {
	NextSurgeryDate(ctx context.Context, mrn string) (string, error)
	ArchiveForPatient(ctx context.Context, mrn string) error
}

type Service struct {
	repo      Repository
	notifier  Notifier
	usage     UsageTracker
	schedules ScheduleSource
	tracked   []string
	logger    zerolog.Logger
}

func NewService(repo Repository, notifier Notifier, usage UsageTracker, schedules ScheduleSource, trackedItems []string, logger zerolog.Logger) *Service {
	if len(trackedItems) == 0 {
		trackedItems = readiness.DefaultTrackedItems
	}
	return &Service{
		repo:      repo,
		notifier:  notifier,
		usage:     usage,
		schedules: schedules,
		tracked:   trackedItems,
		logger:    logger,
	}
}

// TrackedItems returns the configured checklist item names.
func (s *Service) TrackedItems() []string { return s.tracked }

var validStatuses = map[string]bool{
	StatusPending: true, StatusConfirmed: true, StatusDeficient: true,
	StatusInOR: true, StatusCompleted: true, StatusArchived: true,
}

// allowedTransitions is the case workflow. Archived is reached only through
// Archive/AutoArchive, never via a direct status update.
var allowedTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusDeficient},
	StatusConfirmed: {StatusPending, StatusDeficient, StatusInOR},
	StatusDeficient: {StatusPending, StatusConfirmed},
	StatusInOR:      {StatusCompleted},
	StatusCompleted: {},
	StatusArchived:  {},
}

func canTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *Service) Create(ctx context.Context, p *Patient, actor string) error {
	if p.MRN == "" {
		return fmt.Errorf("mrn is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
	if !validStatuses[p.Status] {
		return fmt.Errorf("invalid status: %s", p.Status)
	}
	if p.PrepChecklist == nil {
		p.PrepChecklist = map[string]bool{}
	}
	for _, item := range s.tracked {
		if _, ok := p.PrepChecklist[item]; !ok {
			p.PrepChecklist[item] = false
		}
	}
	p.CreatedBy = actor

	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}

	s.logActivity(ctx, p, "created", actor, "")
	s.trackUsage(ctx, actor, p)
	return nil
}

func (s *Service) Get(ctx context.Context, mrn string) (*Patient, error) {
	return s.repo.GetByMRN(ctx, mrn)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

// Update applies editable fields from in onto the stored patient. Status and
// archive state are managed by their dedicated operations.
func (s *Service) Update(ctx context.Context, mrn string, in *Patient, actor string) (*Patient, error) {
	p, err := s.repo.GetByMRN(ctx, mrn)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		p.Name = in.Name
	}
	if in.DOB != "" {
		p.DOB = in.DOB
	}
	if in.Diagnosis != "" {
		p.Diagnosis = in.Diagnosis
	}
	if in.Procedures != "" {
		p.Procedures = in.Procedures
	}
	if in.ProcedureCode != "" {
		p.ProcedureCode = in.ProcedureCode
	}
	if in.Attending != "" {
		p.Attending = in.Attending
	}
	p.UpdatedBy = actor

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logActivity(ctx, p, "updated", actor, "")
	s.trackUsage(ctx, actor, p)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, mrn string) error {
	return s.repo.Delete(ctx, mrn)
}

// UpdateChecklistItem toggles one tracked checklist item and records the
// change in the activity log.
func (s *Service) UpdateChecklistItem(ctx context.Context, mrn, item string, checked bool, actor string) (*Patient, error) {
	if !s.isTracked(item) {
		return nil, fmt.Errorf("unknown checklist item: %s", item)
	}

	p, err := s.repo.GetByMRN(ctx, mrn)
	if err != nil {
		return nil, err
	}

	p.PrepChecklist[item] = checked
	p.UpdatedBy = actor
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	state := "unchecked"
	if checked {
		state = "checked"
	}
	s.logActivity(ctx, p, "checklist_updated", actor,
		fmt.Sprintf("Updated %s: %s", humanizeItem(item), state))
	return p, nil
}

// SetStatus moves the case through the workflow.
func (s *Service) SetStatus(ctx context.Context, mrn, status, reason, actor string) (*Patient, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	if status == StatusArchived {
		return nil, fmt.Errorf("status %s is set by the archive operation", StatusArchived)
	}

	p, err := s.repo.GetByMRN(ctx, mrn)
	if err != nil {
		return nil, err
	}
	if p.Status == status {
		return p, nil
	}
	if !canTransition(p.Status, status) {
		return nil, fmt.Errorf("cannot move from %s to %s", p.Status, status)
	}

	p.Status = status
	p.UpdatedBy = actor
	if status == StatusCompleted {
		now := time.Now().UTC()
		p.CompletedAt = &now
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logActivity(ctx, p, "status_changed", actor, fmt.Sprintf("Status set to %s", status))
	if status == StatusDeficient && s.notifier != nil {
		s.notifier.PatientDeficient(ctx, p, actor, reason)
	}
	return p, nil
}

// SendToOR marks a confirmed case as in the OR and notifies the team.
func (s *Service) SendToOR(ctx context.Context, mrn, actor string) (*Patient, error) {
	p, err := s.repo.GetByMRN(ctx, mrn)
	if err != nil {
		return nil, err
	}
	if !canTransition(p.Status, StatusInOR) {
		return nil, fmt.Errorf("cannot send %s patient to OR", p.Status)
	}

	p.Status = StatusInOR
	p.UpdatedBy = actor
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logActivity(ctx, p, "sent_to_or", actor, "")
	if s.notifier != nil {
		s.notifier.PatientSentToOR(ctx, p, actor)
	}
	return p, nil
}

// MarkComplete closes out an in-OR case.
func (s *Service) MarkComplete(ctx context.Context, mrn, actor string) (*Patient, error) {
	p, err := s.repo.GetByMRN(ctx, mrn)
	if err != nil {
		return nil, err
	}
	if !canTransition(p.Status, StatusCompleted) {
		return nil, fmt.Errorf("cannot complete %s patient", p.Status)
	}

	now := time.Now().UTC()
	p.Status = StatusCompleted
	p.CompletedAt = &now
	p.UpdatedBy = actor
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logActivity(ctx, p, "completed", actor, "")
	if s.notifier != nil {
		s.notifier.PatientCompleted(ctx, p, actor)
	}
	return p, nil
}

// Archive flags the patient as archived with metadata. The row stays in
// place; nothing is copied or deleted.
func (s *Service) Archive(ctx context.Context, mrn, reason, actor string) (*Patient, error) {
	p, err := s.repo.GetByMRN(ctx, mrn)
	if err != nil {
		return nil, err
	}
	if p.Archived {
		return p, nil
	}

	now := time.Now().UTC()
	p.Archived = true
	p.ArchivedAt = &now
	p.ArchivedBy = actor
	p.ArchivedReason = reason
	p.Status = StatusArchived
	p.UpdatedBy = actor
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.archiveSchedules(ctx, p.MRN)
	s.logActivity(ctx, p, "archived", actor, reason)
	return p, nil
}

// Restore clears the archive flag and resets the case to pending.
func (s *Service) Restore(ctx context.Context, mrn, actor string) (*Patient, error) {
	p, err := s.repo.GetByMRN(ctx, mrn)
	if err != nil {
		return nil, err
	}
	if !p.Archived {
		return p, nil
	}

	p.Archived = false
	p.ArchivedAt = nil
	p.ArchivedBy = ""
	p.ArchivedReason = ""
	p.Status = StatusPending
	p.CompletedAt = nil
	p.UpdatedBy = actor
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logActivity(ctx, p, "restored", actor, "")
	return p, nil
}

// AutoArchive archives every completed patient whose completion is older
// than delay. Returns the MRNs archived.
func (s *Service) AutoArchive(ctx context.Context, delay time.Duration, now time.Time) ([]string, error) {
	cutoff := now.Add(-delay)
	stale, err := s.repo.ListCompletedBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	var archived []string
	for _, p := range stale {
		ts := now
		p.Archived = true
		p.ArchivedAt = &ts
		p.ArchivedBy = "system"
		p.ArchivedReason = "auto-archived after completion"
		p.Status = StatusArchived
		p.UpdatedBy = "system"
		if err := s.repo.Update(ctx, p); err != nil {
			s.logger.Error().Err(err).Str("mrn", p.MRN).Msg("auto-archive failed")
			continue
		}
		s.archiveSchedules(ctx, p.MRN)
		s.logActivity(ctx, p, "archived", "system", "auto-archived after completion")
		archived = append(archived, p.MRN)
	}
	return archived, nil
}

// -- Comments and activity --

func (s *Service) AddComment(ctx context.Context, mrn, body, actor, actorName string) (*Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("comment body is required")
	}
	p, err := s.repo.GetByMRN(ctx, mrn)
	if err != nil {
		return nil, err
	}

	c := &Comment{PatientID: p.ID, Body: body, CreatedBy: actor, CreatedByName: actorName}
	if err := s.repo.AddComment(ctx, c); err != nil {
		return nil, err
	}
	s.logActivity(ctx, p, "comment_added", actor, "")
	return c, nil
}

func (s *Service) ListComments(ctx context.Context, mrn string) ([]*Comment, error) {
	p, err := s.repo.GetByMRN(ctx, mrn)
	if err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, p.ID)
}

func (s *Service) ListActivity(ctx context.Context, mrn string, limit int) ([]*Activity, error) {
	p, err := s.repo.GetByMRN(ctx, mrn)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListActivity(ctx, p.ID, limit)
}

// -- Documents --

// UpsertDocument records the dated document metadata for one requirement
// kind, replacing any previous upload of that kind.
func (s *Service) UpsertDocument(ctx context.Context, mrn string, d *Document, actor string) (*Document, error) {
	if d.Kind == "" {
		return nil, fmt.Errorf("kind is required")
	}
	if _, err := time.Parse("2006-01-02", d.DocumentDate); err != nil {
		return nil, fmt.Errorf("document_date must be YYYY-MM-DD")
	}

	p, err := s.repo.GetByMRN(ctx, mrn)
	if err != nil {
		return nil, err
	}

	d.PatientID = p.ID
	d.UploadedBy = actor
	if err := s.repo.UpsertDocument(ctx, d); err != nil {
		return nil, err
	}
	s.logActivity(ctx, p, "document_uploaded", actor,
		fmt.Sprintf("Recorded %s dated %s", humanizeItem(d.Kind), d.DocumentDate))
	return d, nil
}

func (s *Service) ListDocuments(ctx context.Context, mrn string) ([]*Document, error) {
	p, err := s.repo.GetByMRN(ctx, mrn)
	if err != nil {
		return nil, err
	}
	return s.repo.ListDocuments(ctx, p.ID)
}

// -- Readiness --

// DocumentStatus is one document's classification plus its display age.
type DocumentStatus struct {
	readiness.Result
	Kind         string `json:"kind"`
	DocumentDate string `json:"document_date,omitempty"`
	AgeDisplay   string `json:"age_display"`
}

// ReadinessView is the full readiness picture for one patient, evaluated at
// a single instant.
type ReadinessView struct {
	MRN              string                      `json:"mrn"`
	Status           string                      `json:"status"`
	Documents        []DocumentStatus            `json:"documents"`
	Checklist        readiness.ChecklistProgress `json:"checklist"`
	Ready            bool                        `json:"ready"`
	SurgeryDate      string                      `json:"surgery_date,omitempty"`
	DaysUntilSurgery *int                        `json:"days_until_surgery,omitempty"`
	Urgency          readiness.Urgency           `json:"urgency"`
	EvaluatedAt      time.Time                   `json:"evaluated_at"`
}

// Readiness evaluates every tracked document kind, the checklist, and the
// surgery countdown against the one reference instant now.
func (s *Service) Readiness(ctx context.Context, mrn string, now time.Time) (*ReadinessView, error) {
	p, err := s.repo.GetByMRN(ctx, mrn)
	if err != nil {
		return nil, err
	}

	docs, err := s.repo.ListDocuments(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	dateByKind := make(map[string]string, len(docs))
	for _, d := range docs {
		dateByKind[d.Kind] = d.DocumentDate
	}

	view := &ReadinessView{
		MRN:         p.MRN,
		Status:      p.Status,
		Checklist:   readiness.Progress(p.PrepChecklist, s.tracked),
		EvaluatedAt: now,
	}

	allDocsValid := true
	for _, kind := range readiness.RequiredKinds() {
		result := readiness.Classify(kind, dateByKind[string(kind)], now)
		view.Documents = append(view.Documents, DocumentStatus{
			Result:       result,
			Kind:         string(kind),
			DocumentDate: dateByKind[string(kind)],
			AgeDisplay:   readiness.FormatAge(result.Age),
		})
		if !result.IsValid {
			allDocsValid = false
		}
	}

	view.Ready = view.Checklist.Ready() && allDocsValid

	if s.schedules != nil {
		surgeryDate, err := s.schedules.NextSurgeryDate(ctx, p.MRN)
		if err != nil {
			s.logger.Warn().Err(err).Str("mrn", p.MRN).Msg("next surgery date lookup failed")
		} else {
			view.SurgeryDate = surgeryDate
			view.DaysUntilSurgery = readiness.DaysUntil(surgeryDate, now)
		}
	}
	view.Urgency = readiness.SurgeryUrgency(view.SurgeryDate, now)

	return view, nil
}

// -- helpers --

func (s *Service) isTracked(item string) bool {
	for _, t := range s.tracked {
		if t == item {
			return true
		}
	}
	return false
}

func (s *Service) archiveSchedules(ctx context.Context, mrn string) {
	if s.schedules == nil {
		return
	}
	if err := s.schedules.ArchiveForPatient(ctx, mrn); err != nil {
		s.logger.Error().Err(err).Str("mrn", mrn).Msg("schedule archive failed")
	}
}

func (s *Service) logActivity(ctx context.Context, p *Patient, action, actor, details string) {
	a := &Activity{PatientID: p.ID, Action: action, Actor: actor, Details: details}
	if err := s.repo.AddActivity(ctx, a); err != nil {
		s.logger.Error().Err(err).Str("mrn", p.MRN).Str("action", action).Msg("activity log write failed")
	}
}

func (s *Service) trackUsage(ctx context.Context, actor string, p *Patient) {
	if s.usage == nil {
		return
	}
	if p.Diagnosis != "" {
		s.usage.Track(ctx, actor, "diagnosis", p.Diagnosis)
	}
	if p.ProcedureCode != "" {
		s.usage.Track(ctx, actor, "cpt", p.ProcedureCode)
	}
}

// humanizeItem turns "lab_tests" into "Lab Tests".
func humanizeItem(item string) string {
	words := strings.Split(item, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
