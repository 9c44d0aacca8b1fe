package financial

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caseflow/caseflow/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/cases/:id/financial", h.GetClearance)
	api.PATCH("/cases/:id/financial", h.UpdateClearance)
}

func (h *Handler) GetClearance(c echo.Context) error {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}
	fc, err := h.svc.GetByCase(c.Request().Context(), caseID)
	if err != nil {
		if errors.Is(err, ErrCaseNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load clearance")
	}
	if fc == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, fc)
}

func (h *Handler) UpdateClearance(c echo.Context) error {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}

	var upd Update
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor := auth.ActorUUID(c.Request().Context())
	fc, err := h.svc.Apply(c.Request().Context(), caseID, upd, actor)
	if err != nil {
		if errors.Is(err, ErrCaseNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "case not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, fc)
}
