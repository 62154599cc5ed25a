package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/orprep/orprep/internal/platform/auth"
)

func newTestHandler(t *testing.T) (*Handler, *mockRepo) {
	t.Helper()
	repo := newMockRepo()
	svc, _, _, _ := newTestService(repo)
	return NewHandler(svc, 48*time.Hour), repo
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	ctx := req.Context()
	ctx = context.WithValue(ctx, auth.UserIDKey, "user-1")
	ctx = context.WithValue(ctx, auth.UserEmailKey, "doc@example.com")
	ctx = context.WithValue(ctx, auth.UserNameKey, "Dr. Doe")
	ctx = context.WithValue(ctx, auth.UserRoleKey, "attending")
	return e.NewContext(req.WithContext(ctx), rec)
}

func TestHandler_Create(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	body := `{"mrn":"MRN-1001","name":"Jane Doe","diagnosis":"Class III malocclusion"}`
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var p Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.MRN != "MRN-1001" || p.Status != StatusPending {
		t.Errorf("patient = %+v", p)
	}
	if p.CreatedBy != "doc@example.com" {
		t.Errorf("CreatedBy = %s", p.CreatedBy)
	}
	if len(p.PrepChecklist) == 0 {
		t.Error("checklist not seeded")
	}
}

func TestHandler_Create_MissingMRN(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(`{"name":"Jane Doe"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	err := h.Create(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/patients/NOPE", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("mrn")
	c.SetParamValues("NOPE")

	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("err = %v, want 404", err)
	}
}

func TestHandler_List_DefaultsToActive(t *testing.T) {
	h, repo := newTestHandler(t)
	e := echo.New()

	active := &Patient{MRN: "MRN-A", Name: "A", Status: StatusPending, PrepChecklist: map[string]bool{}}
	archived := &Patient{MRN: "MRN-B", Name: "B", Status: StatusArchived, Archived: true, PrepChecklist: map[string]bool{}}
	repo.Create(context.Background(), active)
	repo.Create(context.Background(), archived)

	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	var resp struct {
		Data  []*Patient `json:"data"`
		Total int        `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 || resp.Data[0].MRN != "MRN-A" {
		t.Errorf("resp = %+v, want only the active patient", resp)
	}
}

func TestHandler_List_BadArchivedParam(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/patients?archived=maybe", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	err := h.List(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestHandler_UpdateChecklist(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	createTestPatient(t, h, e, "MRN-1001")

	body := `{"item":"xrays","checked":true}`
	req := httptest.NewRequest(http.MethodPatch, "/api/patients/MRN-1001/checklist", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("mrn")
	c.SetParamValues("MRN-1001")

	if err := h.UpdateChecklist(c); err != nil {
		t.Fatalf("UpdateChecklist() error = %v", err)
	}

	var p Patient
	json.Unmarshal(rec.Body.Bytes(), &p)
	if !p.PrepChecklist["xrays"] {
		t.Errorf("checklist = %v", p.PrepChecklist)
	}
}

func TestHandler_SetStatus_InvalidTransition(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	createTestPatient(t, h, e, "MRN-1001")

	body := `{"status":"completed"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/patients/MRN-1001/status", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("mrn")
	c.SetParamValues("MRN-1001")

	err := h.SetStatus(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400 for pending -> completed", err)
	}
}

func TestHandler_ArchiveAndRestore(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	createTestPatient(t, h, e, "MRN-1001")

	req := httptest.NewRequest(http.MethodPost, "/api/patients/MRN-1001/archive", strings.NewReader(`{"reason":"canceled"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("mrn")
	c.SetParamValues("MRN-1001")

	if err := h.Archive(c); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	var p Patient
	json.Unmarshal(rec.Body.Bytes(), &p)
	if !p.Archived || p.ArchivedReason != "canceled" {
		t.Errorf("patient = %+v", p)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/patients/MRN-1001/restore", nil)
	rec = httptest.NewRecorder()
	c = authedContext(e, req, rec)
	c.SetParamNames("mrn")
	c.SetParamValues("MRN-1001")

	if err := h.Restore(c); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	json.Unmarshal(rec.Body.Bytes(), &p)
	if p.Archived || p.Status != StatusPending {
		t.Errorf("after restore: %+v", p)
	}
}

func TestHandler_AutoArchive_EmptyResult(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/patients/auto-archive", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := h.AutoArchive(c); err != nil {
		t.Fatalf("AutoArchive() error = %v", err)
	}
	var resp struct {
		Archived []string `json:"archived"`
		Count    int      `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 0 || resp.Archived == nil {
		t.Errorf("resp = %+v, want empty list not null", resp)
	}
}

func TestHandler_Comments(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	createTestPatient(t, h, e, "MRN-1001")

	req := httptest.NewRequest(http.MethodPost, "/api/patients/MRN-1001/comments", strings.NewReader(`{"body":"Needs labs"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("mrn")
	c.SetParamValues("MRN-1001")

	if err := h.AddComment(c); err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var comment Comment
	json.Unmarshal(rec.Body.Bytes(), &comment)
	if comment.CreatedByName != "Dr. Doe" {
		t.Errorf("CreatedByName = %s", comment.CreatedByName)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/patients/MRN-1001/comments", nil)
	rec = httptest.NewRecorder()
	c = authedContext(e, req, rec)
	c.SetParamNames("mrn")
	c.SetParamValues("MRN-1001")

	if err := h.ListComments(c); err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	var comments []*Comment
	if err := json.Unmarshal(rec.Body.Bytes(), &comments); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(comments) != 1 || comments[0].Body != "Needs labs" {
		t.Errorf("comments = %+v", comments)
	}
}

func TestHandler_Documents(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	createTestPatient(t, h, e, "MRN-1001")

	body := `{"document_date":"2025-06-01","file_name":"auth.pdf"}`
	req := httptest.NewRequest(http.MethodPut, "/api/patients/MRN-1001/documents/prior_auth", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("mrn", "kind")
	c.SetParamValues("MRN-1001", "prior_auth")

	if err := h.UpsertDocument(c); err != nil {
		t.Fatalf("UpsertDocument() error = %v", err)
	}
	var doc Document
	json.Unmarshal(rec.Body.Bytes(), &doc)
	if doc.Kind != "prior_auth" || doc.DocumentDate != "2025-06-01" {
		t.Errorf("document = %+v", doc)
	}
}

func TestHandler_Readiness(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	createTestPatient(t, h, e, "MRN-1001")

	req := httptest.NewRequest(http.MethodGet, "/api/patients/MRN-1001/readiness", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("mrn")
	c.SetParamValues("MRN-1001")

	if err := h.Readiness(c); err != nil {
		t.Fatalf("Readiness() error = %v", err)
	}

	var view ReadinessView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if view.MRN != "MRN-1001" || view.Ready {
		t.Errorf("view = %+v", view)
	}
	if len(view.Documents) != 3 {
		t.Errorf("documents = %d, want 3", len(view.Documents))
	}
}

func createTestPatient(t *testing.T, h *Handler, e *echo.Echo, mrn string) {
	t.Helper()
	body := `{"mrn":"` + mrn + `","name":"Jane Doe"}`
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	if err := h.Create(c); err != nil {
		t.Fatalf("create patient: %v", err)
	}
}
