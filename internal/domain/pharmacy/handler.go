package pharmacy

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
	api.POST("/cases/:id/pharmacy-push", h.Push)
	api.GET("/cases/:id/pharmacy-push", h.GetOrder)
	api.PATCH("/cases/:id/pharmacy-push", h.UpdateOrder)
}

func (h *Handler) Push(c echo.Context) error {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}

	var req PushRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor := auth.ActorUUID(c.Request().Context())
	order, err := h.svc.Push(c.Request().Context(), caseID, req, actor)
	if err != nil {
		switch {
		case errors.Is(err, ErrCaseNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "case not found")
		case errors.Is(err, ErrOrderExists):
			return echo.NewHTTPError(http.StatusConflict, "pharmacy order already exists for this case")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c echo.Context) error {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}
	order, err := h.svc.GetByCase(c.Request().Context(), caseID)
	if err != nil {
		if errors.Is(err, ErrCaseNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load pharmacy order")
	}
	if order == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) UpdateOrder(c echo.Context) error {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}

	var upd Update
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor := auth.ActorUUID(c.Request().Context())
	order, err := h.svc.Apply(c.Request().Context(), caseID, upd, actor)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "pharmacy order not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, order)
}
