package patient

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/orprep/orprep/internal/platform/auth"
	"github.com/orprep/orprep/pkg/pagination"
)

type Handler struct {
	svc          *Service
	archiveDelay time.Duration
}

func NewHandler(svc *Service, archiveDelay time.Duration) *Handler {
	return &Handler{svc: svc, archiveDelay: archiveDelay}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.List)
	api.POST("/patients", h.Create)
	api.POST("/patients/auto-archive", h.AutoArchive, auth.RequireRole("attending"))
	api.GET("/patients/:mrn", h.Get)
	api.PUT("/patients/:mrn", h.Update)
	api.DELETE("/patients/:mrn", h.Delete, auth.RequireRole("attending"))
	api.PATCH("/patients/:mrn/checklist", h.UpdateChecklist)
	api.PATCH("/patients/:mrn/status", h.SetStatus)
	api.POST("/patients/:mrn/send-to-or", h.SendToOR)
	api.POST("/patients/:mrn/complete", h.MarkComplete)
	api.POST("/patients/:mrn/archive", h.Archive)
	api.POST("/patients/:mrn/restore", h.Restore)
	api.GET("/patients/:mrn/comments", h.ListComments)
	api.POST("/patients/:mrn/comments", h.AddComment)
	api.GET("/patients/:mrn/activity", h.ListActivity)
	api.GET("/patients/:mrn/documents", h.ListDocuments)
	api.PUT("/patients/:mrn/documents/:kind", h.UpsertDocument)
	api.GET("/patients/:mrn/readiness", h.Readiness)
}

func actor(c echo.Context) (email, name string) {
	ctx := c.Request().Context()
	email = auth.EmailFromContext(ctx)
	name = auth.NameFromContext(ctx)
	if name == "" {
		name = email
	}
	return email, name
}

func httpError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func (h *Handler) Create(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	email, _ := actor(c)
	if err := h.svc.Create(c.Request().Context(), &p, email); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("mrn"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	f := ListFilter{
		Status:    c.QueryParam("status"),
		Attending: c.QueryParam("attending"),
		Search:    c.QueryParam("q"),
	}
	if v := c.QueryParam("archived"); v != "" {
		archived, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "archived must be true or false")
		}
		f.Archived = &archived
	} else {
		// Active view by default
		archived := false
		f.Archived = &archived
	}

	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	var in Patient
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	email, _ := actor(c)
	p, err := h.svc.Update(c.Request().Context(), c.Param("mrn"), &in, email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("mrn")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type checklistRequest struct {
	Item    string `json:"item"`
	Checked bool   `json:"checked"`
}

func (h *Handler) UpdateChecklist(c echo.Context) error {
	var req checklistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	email, _ := actor(c)
	p, err := h.svc.UpdateChecklistItem(c.Request().Context(), c.Param("mrn"), req.Item, req.Checked, email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

type statusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h *Handler) SetStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	email, _ := actor(c)
	p, err := h.svc.SetStatus(c.Request().Context(), c.Param("mrn"), req.Status, req.Reason, email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) SendToOR(c echo.Context) error {
	email, _ := actor(c)
	p, err := h.svc.SendToOR(c.Request().Context(), c.Param("mrn"), email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) MarkComplete(c echo.Context) error {
	email, _ := actor(c)
	p, err := h.svc.MarkComplete(c.Request().Context(), c.Param("mrn"), email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

type archiveRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Archive(c echo.Context) error {
	var req archiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	email, _ := actor(c)
	p, err := h.svc.Archive(c.Request().Context(), c.Param("mrn"), req.Reason, email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Restore(c echo.Context) error {
	email, _ := actor(c)
	p, err := h.svc.Restore(c.Request().Context(), c.Param("mrn"), email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) AutoArchive(c echo.Context) error {
	archived, err := h.svc.AutoArchive(c.Request().Context(), h.archiveDelay, time.Now().UTC())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if archived == nil {
		archived = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"archived": archived,
		"count":    len(archived),
	})
}

type commentRequest struct {
	Body string `json:"body"`
}

func (h *Handler) AddComment(c echo.Context) error {
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	email, name := actor(c)
	comment, err := h.svc.AddComment(c.Request().Context(), c.Param("mrn"), req.Body, email, name)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *Handler) ListComments(c echo.Context) error {
	comments, err := h.svc.ListComments(c.Request().Context(), c.Param("mrn"))
	if err != nil {
		return httpError(err)
	}
	if comments == nil {
		comments = []*Comment{}
	}
	return c.JSON(http.StatusOK, comments)
}

func (h *Handler) ListActivity(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	entries, err := h.svc.ListActivity(c.Request().Context(), c.Param("mrn"), limit)
	if err != nil {
		return httpError(err)
	}
	if entries == nil {
		entries = []*Activity{}
	}
	return c.JSON(http.StatusOK, entries)
}

type documentRequest struct {
	DocumentDate string `json:"document_date"`
	FileName     string `json:"file_name"`
	Note         string `json:"note"`
}

func (h *Handler) UpsertDocument(c echo.Context) error {
	var req documentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	email, _ := actor(c)
	d := &Document{
		Kind:         c.Param("kind"),
		DocumentDate: req.DocumentDate,
		FileName:     req.FileName,
		Note:         req.Note,
	}
	doc, err := h.svc.UpsertDocument(c.Request().Context(), c.Param("mrn"), d, email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *Handler) ListDocuments(c echo.Context) error {
	docs, err := h.svc.ListDocuments(c.Request().Context(), c.Param("mrn"))
	if err != nil {
		return httpError(err)
	}
	if docs == nil {
		docs = []*Document{}
	}
	return c.JSON(http.StatusOK, docs)
}

func (h *Handler) Readiness(c echo.Context) error {
	view, err := h.svc.Readiness(c.Request().Context(), c.Param("mrn"), time.Now().UTC())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}
