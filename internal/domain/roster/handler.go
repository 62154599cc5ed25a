package roster

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/orprep/orprep/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/residents", h.ListResidents)
	api.POST("/residents", h.CreateResident, auth.RequireRole("attending"))
	api.GET("/residents/:id", h.GetResident)
	api.PUT("/residents/:id", h.UpdateResident, auth.RequireRole("attending"))
	api.DELETE("/residents/:id", h.DeleteResident, auth.RequireRole("attending"))

	api.GET("/attendings", h.ListAttendings)
	api.POST("/attendings", h.CreateAttending, auth.RequireRole("attending"))
	api.GET("/attendings/:id", h.GetAttending)
	api.PUT("/attendings/:id", h.UpdateAttending, auth.RequireRole("attending"))
	api.DELETE("/attendings/:id", h.DeleteAttending, auth.RequireRole("attending"))
}

func memberID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func httpError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "roster member not found")
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func listFilter(c echo.Context) (ListFilter, error) {
	f := ListFilter{Hospital: c.QueryParam("hospital")}
	if v := c.QueryParam("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "active must be true or false")
		}
		f.Active = &active
	}
	return f, nil
}

func (h *Handler) CreateResident(c echo.Context) error {
	var r Resident
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.EmailFromContext(c.Request().Context())
	if err := h.svc.CreateResident(c.Request().Context(), &r, actor); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) GetResident(c echo.Context) error {
	id, err := memberID(c)
	if err != nil {
		return err
	}
	r, err := h.svc.GetResident(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ListResidents(c echo.Context) error {
	f, err := listFilter(c)
	if err != nil {
		return err
	}
	residents, err := h.svc.ListResidents(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if residents == nil {
		residents = []*Resident{}
	}
	return c.JSON(http.StatusOK, residents)
}

func (h *Handler) UpdateResident(c echo.Context) error {
	id, err := memberID(c)
	if err != nil {
		return err
	}
	var in Resident
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.UpdateResident(c.Request().Context(), id, &in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteResident(c echo.Context) error {
	id, err := memberID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteResident(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateAttending(c echo.Context) error {
	var a Attending
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.EmailFromContext(c.Request().Context())
	if err := h.svc.CreateAttending(c.Request().Context(), &a, actor); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAttending(c echo.Context) error {
	id, err := memberID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.GetAttending(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAttendings(c echo.Context) error {
	f, err := listFilter(c)
	if err != nil {
		return err
	}
	attendings, err := h.svc.ListAttendings(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if attendings == nil {
		attendings = []*Attending{}
	}
	return c.JSON(http.StatusOK, attendings)
}

func (h *Handler) UpdateAttending(c echo.Context) error {
	id, err := memberID(c)
	if err != nil {
		return err
	}
	var in Attending
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.UpdateAttending(c.Request().Context(), id, &in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAttending(c echo.Context) error {
	id, err := memberID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteAttending(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
