package cases

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caseflow/caseflow/internal/domain/audit"
	"github.com/caseflow/caseflow/internal/domain/workflow"
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
	api.POST("/cases", h.Create)
	api.GET("/cases", h.List)
	api.GET("/cases/:id", h.Get)
	api.PATCH("/cases/:id/status", h.UpdateStatus)
	api.POST("/cases/:id/assign-infusion-org", h.AssignInfusionOrg, auth.RequireRole(auth.RoleInfusionAdmin))
	api.POST("/cases/:id/patient", h.AttachPatient)
	api.PATCH("/cases/:id/prescription", h.UpdatePrescription)
	api.PATCH("/cases/:id/insurance", h.UpdateInsurance)
	api.GET("/cases/:id/timeline", h.Timeline)
	api.GET("/cases/:id/blockers", h.Blockers)
}

// invalidEdgeResponse is the 409 body when the lifecycle graph has no edge
// from the current status to the requested one.
type invalidEdgeResponse struct {
	Error   string            `json:"error"`
	From    workflow.Status   `json:"from"`
	To      workflow.Status   `json:"to"`
	Allowed []workflow.Status `json:"allowed"`
}

// blockedResponse is the 409 body when the edge exists but prerequisites are
// unmet.
type blockedResponse struct {
	Error   string          `json:"error"`
	To      workflow.Status `json:"to"`
	Reasons []string        `json:"reasons"`
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// canAccess enforces org scoping: providers only reach their own org's
// cases, infusion admins only cases assigned to their org or not yet
// assigned. Admins reach everything.
func canAccess(ctx context.Context, cs *Case) bool {
	roles := auth.RolesFromContext(ctx)
	if hasRole(roles, auth.RoleAdmin) {
		return true
	}
	org := auth.OrgIDFromContext(ctx)
	if hasRole(roles, auth.RoleProvider) {
		if org == nil || cs.ProviderOrgID != *org {
			return false
		}
	}
	if hasRole(roles, auth.RoleInfusionAdmin) {
		if cs.InfusionOrgID != nil && (org == nil || *cs.InfusionOrgID != *org) {
			return false
		}
	}
	return true
}

// loadCase resolves the :id param into an accessible case or an HTTP error.
func (h *Handler) loadCase(c echo.Context) (*Case, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}
	cs, err := h.svc.GetCase(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrCaseNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "case not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to load case")
	}
	if !canAccess(c.Request().Context(), cs) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "access denied")
	}
	return cs, nil
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if req.ProviderOrgID == nil {
		req.ProviderOrgID = auth.OrgIDFromContext(ctx)
	}

	created, err := h.svc.Create(ctx, req, auth.ActorUUID(ctx))
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var filter ListFilter
	if raw := c.QueryParam("status"); raw != "" {
		status := workflow.Status(raw)
		if !status.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status filter")
		}
		filter.Status = &status
	}

	roles := auth.RolesFromContext(ctx)
	if !hasRole(roles, auth.RoleAdmin) {
		org := auth.OrgIDFromContext(ctx)
		if hasRole(roles, auth.RoleProvider) {
			filter.ProviderOrgID = org
		} else if hasRole(roles, auth.RoleInfusionAdmin) {
			filter.InfusionOrgID = org
		}
	}

	pg := pagination.FromContext(c)
	list, total, err := h.svc.List(ctx, filter, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list cases")
	}
	if list == nil {
		list = []*Case{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	cs, err := h.loadCase(c)
	if err != nil {
		return err
	}
	detail, err := h.svc.Detail(c.Request().Context(), cs.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load case")
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	cs, err := h.loadCase(c)
	if err != nil {
		return err
	}

	var req struct {
		NewStatus string `json:"new_status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	target := workflow.Status(req.NewStatus)
	if !target.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	ctx := c.Request().Context()
	updated, err := h.svc.Transition(ctx, cs.ID, target, auth.ActorUUID(ctx))
	if err != nil {
		var edgeErr *workflow.InvalidEdgeError
		if errors.As(err, &edgeErr) {
			return c.JSON(http.StatusConflict, invalidEdgeResponse{
				Error:   "invalid_edge",
				From:    edgeErr.From,
				To:      edgeErr.To,
				Allowed: edgeErr.Allowed,
			})
		}
		var blockedErr *workflow.BlockedError
		if errors.As(err, &blockedErr) {
			return c.JSON(http.StatusConflict, blockedResponse{
				Error:   "blocked",
				To:      blockedErr.To,
				Reasons: blockedErr.Reasons,
			})
		}
		if errors.Is(err, ErrCaseNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update case status")
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) AssignInfusionOrg(c echo.Context) error {
	cs, err := h.loadCase(c)
	if err != nil {
		return err
	}

	var req struct {
		InfusionOrgID uuid.UUID `json:"infusion_org_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.InfusionOrgID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "infusion_org_id is required")
	}

	ctx := c.Request().Context()
	updated, err := h.svc.AssignInfusionOrg(ctx, cs.ID, req.InfusionOrgID, auth.ActorUUID(ctx))
	if err != nil {
		if errors.Is(err, ErrCaseNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to assign infusion org")
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) AttachPatient(c echo.Context) error {
	cs, err := h.loadCase(c)
	if err != nil {
		return err
	}

	var in PatientInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	patient, err := h.svc.AttachPatient(ctx, cs.ID, in, auth.ActorUUID(ctx))
	if err != nil {
		if errors.Is(err, ErrCaseNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "case not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, patient)
}

func (h *Handler) UpdatePrescription(c echo.Context) error {
	cs, err := h.loadCase(c)
	if err != nil {
		return err
	}

	var upd PrescriptionUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	rx, err := h.svc.UpsertPrescription(ctx, cs.ID, upd, auth.ActorUUID(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update prescription")
	}
	return c.JSON(http.StatusOK, rx)
}

func (h *Handler) UpdateInsurance(c echo.Context) error {
	cs, err := h.loadCase(c)
	if err != nil {
		return err
	}

	var upd InsuranceUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	ins, err := h.svc.UpsertInsurance(ctx, cs.ID, upd, auth.ActorUUID(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update insurance")
	}
	return c.JSON(http.StatusOK, ins)
}

func (h *Handler) Timeline(c echo.Context) error {
	cs, err := h.loadCase(c)
	if err != nil {
		return err
	}

	pg := pagination.FromContext(c)
	events, total, err := h.svc.Timeline(c.Request().Context(), cs.ID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load timeline")
	}
	if events == nil {
		events = []*audit.TimelineEvent{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(events, total, pg.Limit, pg.Offset))
}

func (h *Handler) Blockers(c echo.Context) error {
	cs, err := h.loadCase(c)
	if err != nil {
		return err
	}
	blockers, err := h.svc.Blockers(c.Request().Context(), cs.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to evaluate blockers")
	}
	return c.JSON(http.StatusOK, blockers)
}
