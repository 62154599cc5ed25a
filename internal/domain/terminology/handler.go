package terminology

import (
	"errors"
	"net/http"
	"strconv"

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
	api.GET("/cpt/search", h.Search)
	api.GET("/cpt/categories", h.Categories)
	api.GET("/cpt/categories/:category", h.ListByCategory)
	api.GET("/cpt/favorites", h.ListFavorites)
	api.PUT("/cpt/:code/favorite", h.SetFavorite)
	api.GET("/cpt/:code", h.Lookup)
	api.GET("/usage/frequent", h.FrequentlyUsed)
}

func limitParam(c echo.Context) int {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return limit
}

func (h *Handler) Search(c echo.Context) error {
	codes, err := h.svc.SearchCPT(c.Request().Context(), c.QueryParam("q"), limitParam(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if codes == nil {
		codes = []*CPTCode{}
	}
	return c.JSON(http.StatusOK, codes)
}

func (h *Handler) Lookup(c echo.Context) error {
	code, err := h.svc.LookupCPT(c.Request().Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "code not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, code)
}

func (h *Handler) Categories(c echo.Context) error {
	categories, err := h.svc.Categories(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if categories == nil {
		categories = []string{}
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *Handler) ListByCategory(c echo.Context) error {
	codes, err := h.svc.ListByCategory(c.Request().Context(), c.Param("category"), limitParam(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if codes == nil {
		codes = []*CPTCode{}
	}
	return c.JSON(http.StatusOK, codes)
}

func (h *Handler) ListFavorites(c echo.Context) error {
	codes, err := h.svc.ListFavorites(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if codes == nil {
		codes = []*CPTCode{}
	}
	return c.JSON(http.StatusOK, codes)
}

type favoriteRequest struct {
	Favorite bool `json:"favorite"`
}

func (h *Handler) SetFavorite(c echo.Context) error {
	var req favoriteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetFavorite(c.Request().Context(), c.Param("code"), req.Favorite); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "code not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) FrequentlyUsed(c echo.Context) error {
	email := auth.EmailFromContext(c.Request().Context())
	itemType := c.QueryParam("type")
	if itemType == "" {
		itemType = ItemTypeCPT
	}

	stats, err := h.svc.FrequentlyUsed(c.Request().Context(), email, itemType, limitParam(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if stats == nil {
		stats = []*UsageStat{}
	}
	return c.JSON(http.StatusOK, stats)
}
