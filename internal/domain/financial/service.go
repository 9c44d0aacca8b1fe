package financial

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caseflow/caseflow/internal/domain/audit"
)

var ErrCaseNotFound = errors.New("case not found")

// Update is a partial clearance mutation; nil fields are left unchanged.
type Update struct {
	BenefitsVerifiedAt      *time.Time `json:"benefits_verified_at,omitempty"`
	CostEstimateAmount      *float64   `json:"cost_estimate_amount,omitempty"`
	PatientAcknowledgedCost *bool      `json:"patient_acknowledged_cost,omitempty"`
	AssistanceProgram       *string    `json:"assistance_program,omitempty"`
	ClearedAt               *time.Time `json:"cleared_at,omitempty"`
}

func (u Update) changedFields() []string {
	var fields []string
	if u.BenefitsVerifiedAt != nil {
		fields = append(fields, "benefits_verified_at")
	}
	if u.CostEstimateAmount != nil {
		fields = append(fields, "cost_estimate_amount")
	}
	if u.PatientAcknowledgedCost != nil {
		fields = append(fields, "patient_acknowledged_cost")
	}
	if u.AssistanceProgram != nil {
		fields = append(fields, "assistance_program")
	}
	if u.ClearedAt != nil {
		fields = append(fields, "cleared_at")
	}
	return fields
}

type Service struct {
	repo  ClearanceRepository
	cases CaseChecker
	audit *audit.Service
}

func NewService(repo ClearanceRepository, cases CaseChecker, auditSvc *audit.Service) *Service {
	return &Service{repo: repo, cases: cases, audit: auditSvc}
}

// GetByCase returns the case's clearance, or nil when none exists yet.
func (s *Service) GetByCase(ctx context.Context, caseID uuid.UUID) (*Clearance, error) {
	exists, err := s.cases.CaseExists(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("check case: %w", err)
	}
	if !exists {
		return nil, ErrCaseNotFound
	}

	fc, err := s.repo.GetByCase(ctx, caseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return fc, err
}

// Apply upserts the case's clearance with the changed fields and records a
// FINANCIAL_UPDATED event naming them.
func (s *Service) Apply(ctx context.Context, caseID uuid.UUID, upd Update, actorID *uuid.UUID) (*Clearance, error) {
	exists, err := s.cases.CaseExists(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("check case: %w", err)
	}
	if !exists {
		return nil, ErrCaseNotFound
	}

	fc, err := s.repo.GetByCase(ctx, caseID)
	if errors.Is(err, pgx.ErrNoRows) {
		fc = &Clearance{CaseID: caseID}
	} else if err != nil {
		return nil, err
	}

	if upd.BenefitsVerifiedAt != nil {
		fc.BenefitsVerifiedAt = upd.BenefitsVerifiedAt
	}
	if upd.CostEstimateAmount != nil {
		fc.CostEstimateAmount = upd.CostEstimateAmount
	}
	if upd.PatientAcknowledgedCost != nil {
		fc.PatientAcknowledgedCost = *upd.PatientAcknowledgedCost
	}
	if upd.AssistanceProgram != nil {
		fc.AssistanceProgram = upd.AssistanceProgram
	}
	if upd.ClearedAt != nil {
		fc.ClearedAt = upd.ClearedAt
	}

	if err := s.repo.Upsert(ctx, fc); err != nil {
		return nil, fmt.Errorf("upsert clearance: %w", err)
	}

	if err := s.audit.RecordEvent(ctx, caseID, audit.EventFinancialUpdated, actorID,
		audit.FieldChangePayload{Fields: upd.changedFields()}); err != nil {
		return nil, err
	}
	return fc, nil
}
