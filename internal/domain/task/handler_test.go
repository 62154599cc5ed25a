package task

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/orprep/orprep/internal/platform/auth"
)

func newTestHandler() *Handler {
	svc, _ := newTestService()
	return NewHandler(svc)
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	ctx := context.WithValue(req.Context(), auth.UserEmailKey, "doc@example.com")
	return e.NewContext(req.WithContext(ctx), rec)
}

func TestHandler_Create(t *testing.T) {
	h := newTestHandler()
	e := echo.New()

	body := `{"patient_mrn":"MRN-1001","description":"Chase insurance auth","urgency":"urgent"}`
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}

	var task Task
	json.Unmarshal(rec.Body.Bytes(), &task)
	if task.Status != StatusOpen || task.CreatedBy != "doc@example.com" {
		t.Errorf("task = %+v", task)
	}
}

func TestHandler_Create_MissingDescription(t *testing.T) {
	h := newTestHandler()
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(`{"patient_mrn":"MRN-1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	err := h.Create(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestHandler_Get_BadID(t *testing.T) {
	h := newTestHandler()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestHandler_ToggleComplete(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	task := &Task{PatientMRN: "MRN-1001", Description: "Chase auth"}
	if err := svc.Create(context.Background(), task, "doc@example.com"); err != nil {
		t.Fatalf("create: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/tasks/"+task.ID.String()+"/toggle", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("id")
	c.SetParamValues(task.ID.String())

	if err := h.ToggleComplete(c); err != nil {
		t.Fatalf("ToggleComplete() error = %v", err)
	}

	var got Task
	json.Unmarshal(rec.Body.Bytes(), &got)
	if !got.Completed {
		t.Errorf("task = %+v", got)
	}
}

func TestHandler_List_FilterByAssignee(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		task := &Task{PatientMRN: "MRN-1001", Description: "X", AssignedToEmail: email}
		if err := svc.Create(context.Background(), task, "doc@example.com"); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/tasks?assignee=a@example.com", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	var resp struct {
		Data  []*Task `json:"data"`
		Total int     `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 1 || resp.Data[0].AssignedToEmail != "a@example.com" {
		t.Errorf("resp = %+v", resp)
	}
}
