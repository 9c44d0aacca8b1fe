package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caseflow/caseflow/internal/domain/audit"
)

var (
	ErrCaseNotFound  = errors.New("case not found")
	ErrOrderNotFound = errors.New("pharmacy order not found")
	ErrOrderExists   = errors.New("pharmacy order already exists for this case")
)

// PushRequest carries the fields a caller may set when pushing an order.
type PushRequest struct {
	ShipTo               *string    `json:"ship_to,omitempty"`
	RequestedArrivalDate *time.Time `json:"requested_arrival_date,omitempty"`
	PharmacyNotes        *string    `json:"pharmacy_notes,omitempty"`
}

// Update is a partial order mutation; nil fields are left unchanged.
type Update struct {
	ShipTo               *string            `json:"ship_to,omitempty"`
	RequestedArrivalDate *time.Time         `json:"requested_arrival_date,omitempty"`
	FulfillmentStatus    *FulfillmentStatus `json:"fulfillment_status,omitempty"`
	PharmacyNotes        *string            `json:"pharmacy_notes,omitempty"`
	NDC                  *string            `json:"ndc,omitempty"`
	Lot                  *string            `json:"lot,omitempty"`
	ExpirationDate       *time.Time         `json:"expiration_date,omitempty"`
}

func (u Update) changedFields() []string {
	var fields []string
	if u.ShipTo != nil {
		fields = append(fields, "ship_to")
	}
	if u.RequestedArrivalDate != nil {
		fields = append(fields, "requested_arrival_date")
	}
	if u.FulfillmentStatus != nil {
		fields = append(fields, "fulfillment_status")
	}
	if u.PharmacyNotes != nil {
		fields = append(fields, "pharmacy_notes")
	}
	if u.NDC != nil {
		fields = append(fields, "ndc")
	}
	if u.Lot != nil {
		fields = append(fields, "lot")
	}
	if u.ExpirationDate != nil {
		fields = append(fields, "expiration_date")
	}
	return fields
}

type Service struct {
	repo  OrderRepository
	cases CaseChecker
	audit *audit.Service
	now   func() time.Time
}

func NewService(repo OrderRepository, cases CaseChecker, auditSvc *audit.Service) *Service {
	return &Service{repo: repo, cases: cases, audit: auditSvc, now: time.Now}
}

// Push creates the case's pharmacy order with pushed_at set to now and
// fulfillment NOT_STARTED. A case gets exactly one order; a second push is a
// conflict. Pushing records the order but does not change case status; the
// PHARMACY_PUSHED transition checks pushed_at.
func (s *Service) Push(ctx context.Context, caseID uuid.UUID, req PushRequest, actorID *uuid.UUID) (*Order, error) {
	exists, err := s.cases.CaseExists(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("check case: %w", err)
	}
	if !exists {
		return nil, ErrCaseNotFound
	}

	if _, err := s.repo.GetByCase(ctx, caseID); err == nil {
		return nil, ErrOrderExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	pushedAt := s.now().UTC()
	order := &Order{
		CaseID:               caseID,
		PushedAt:             &pushedAt,
		ShipTo:               req.ShipTo,
		RequestedArrivalDate: req.RequestedArrivalDate,
		PharmacyNotes:        req.PharmacyNotes,
		FulfillmentStatus:    FulfillmentNotStarted,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create pharmacy order: %w", err)
	}

	payload := audit.PharmacyOrderPayload{OrderID: order.ID.String(), PushedAt: pushedAt.Format(time.RFC3339)}
	if req.ShipTo != nil {
		payload.ShipTo = *req.ShipTo
	}
	if err := s.audit.RecordEvent(ctx, caseID, audit.EventPharmacyPushed, actorID, payload); err != nil {
		return nil, err
	}
	if err := s.audit.AppendLog(ctx, &audit.AuditLog{
		ActorUserID: actorID,
		Action:      audit.ActionPharmacyPushed,
		EntityType:  "pharmacy_order",
		EntityID:    &order.ID,
		Metadata:    audit.MustMarshal(payload),
	}); err != nil {
		return nil, err
	}
	return order, nil
}

// GetByCase returns the case's order, or nil when none has been pushed.
func (s *Service) GetByCase(ctx context.Context, caseID uuid.UUID) (*Order, error) {
	exists, err := s.cases.CaseExists(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("check case: %w", err)
	}
	if !exists {
		return nil, ErrCaseNotFound
	}

	order, err := s.repo.GetByCase(ctx, caseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return order, err
}

// Apply updates fulfillment fields on the case's order and records a
// PHARMACY_ORDER_UPDATED event.
func (s *Service) Apply(ctx context.Context, caseID uuid.UUID, upd Update, actorID *uuid.UUID) (*Order, error) {
	order, err := s.repo.GetByCase(ctx, caseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	} else if err != nil {
		return nil, err
	}

	if upd.FulfillmentStatus != nil {
		if !upd.FulfillmentStatus.Valid() {
			return nil, fmt.Errorf("invalid fulfillment status %q", *upd.FulfillmentStatus)
		}
		order.FulfillmentStatus = *upd.FulfillmentStatus
	}
	if upd.ShipTo != nil {
		order.ShipTo = upd.ShipTo
	}
	if upd.RequestedArrivalDate != nil {
		order.RequestedArrivalDate = upd.RequestedArrivalDate
	}
	if upd.PharmacyNotes != nil {
		order.PharmacyNotes = upd.PharmacyNotes
	}
	if upd.NDC != nil {
		order.NDC = upd.NDC
	}
	if upd.Lot != nil {
		order.Lot = upd.Lot
	}
	if upd.ExpirationDate != nil {
		order.ExpirationDate = upd.ExpirationDate
	}

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update pharmacy order: %w", err)
	}

	if err := s.audit.RecordEvent(ctx, caseID, audit.EventPharmacyOrderUpdated, actorID,
		audit.FieldChangePayload{Fields: upd.changedFields()}); err != nil {
		return nil, err
	}
	return order, nil
}
