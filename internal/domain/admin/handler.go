package admin

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caseflow/caseflow/internal/platform/auth"
	"github.com/caseflow/caseflow/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/organizations", h.CreateOrganization, auth.RequireRole(auth.RoleAdmin))
	api.GET("/organizations", h.ListOrganizations)
	api.GET("/organizations/:id", h.GetOrganization)
}

func (h *Handler) CreateOrganization(c echo.Context) error {
	var o Organization
	if err := c.Bind(&o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateOrganization(c.Request().Context(), &o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) GetOrganization(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, err := h.svc.GetOrganization(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "organization not found")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) ListOrganizations(c echo.Context) error {
	pg := pagination.FromContext(c)
	var orgType *OrgType
	if t := c.QueryParam("type"); t != "" {
		ot := OrgType(t)
		orgType = &ot
	}
	orgs, total, err := h.svc.ListOrganizations(c.Request().Context(), orgType, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if orgs == nil {
		orgs = []*Organization{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(orgs, total, pg.Limit, pg.Offset))
}
