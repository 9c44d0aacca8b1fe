package cases

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caseflow/caseflow/internal/domain/financial"
	"github.com/caseflow/caseflow/internal/domain/pharmacy"
	"github.com/caseflow/caseflow/internal/domain/workflow"
)

// ClearanceGetter is the slice of the financial store the record source
// needs. financial.ClearanceRepository satisfies it.
type ClearanceGetter interface {
	GetByCase(ctx context.Context, caseID uuid.UUID) (*financial.Clearance, error)
}

// WelcomeCallChecker reports whether the case's welcome call has been
// completed. tasks.Service satisfies it.
type WelcomeCallChecker interface {
	HasDoneWelcomeCall(ctx context.Context, caseID uuid.UUID) (bool, error)
}

// ScheduleChecker reports whether the case has an appointment set.
// schedule.ScheduleRepository satisfies it.
type ScheduleChecker interface {
	ExistsForCase(ctx context.Context, caseID uuid.UUID) (bool, error)
}

// OrderGetter loads the case's pharmacy order. pharmacy.OrderRepository
// satisfies it.
type OrderGetter interface {
	GetByCase(ctx context.Context, caseID uuid.UUID) (*pharmacy.Order, error)
}

// recordSource aggregates the per-record stores into the snapshot the
// workflow engine evaluates. Reads go through whatever transaction the
// context carries, so a transition sees the records as of its own row lock.
type recordSource struct {
	prescriptions PrescriptionRepository
	insurance     InsuranceRepository
	clearances    ClearanceGetter
	welcomeCalls  WelcomeCallChecker
	schedules     ScheduleChecker
	orders        OrderGetter
}

func NewRecordSource(
	prescriptions PrescriptionRepository,
	insurance InsuranceRepository,
	clearances ClearanceGetter,
	welcomeCalls WelcomeCallChecker,
	schedules ScheduleChecker,
	orders OrderGetter,
) workflow.RecordSource {
	return &recordSource{
		prescriptions: prescriptions,
		insurance:     insurance,
		clearances:    clearances,
		welcomeCalls:  welcomeCalls,
		schedules:     schedules,
		orders:        orders,
	}
}

func (s *recordSource) RelatedRecords(ctx context.Context, caseID uuid.UUID) (*workflow.Related, error) {
	related := &workflow.Related{}

	rx, err := s.prescriptions.GetByCase(ctx, caseID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load prescription: %w", err)
	}
	if rx != nil {
		related.Prescription = &workflow.Prescription{
			DrugName:  rx.DrugName,
			Dose:      rx.Dose,
			Frequency: rx.Frequency,
		}
	}

	if related.HasInsurance, err = s.insurance.ExistsForCase(ctx, caseID); err != nil {
		return nil, fmt.Errorf("check insurance: %w", err)
	}

	fc, err := s.clearances.GetByCase(ctx, caseID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load financial clearance: %w", err)
	}
	related.Clearance = fc

	if related.WelcomeCallDone, err = s.welcomeCalls.HasDoneWelcomeCall(ctx, caseID); err != nil {
		return nil, fmt.Errorf("check welcome call: %w", err)
	}

	if related.HasSchedule, err = s.schedules.ExistsForCase(ctx, caseID); err != nil {
		return nil, fmt.Errorf("check schedule: %w", err)
	}

	order, err := s.orders.GetByCase(ctx, caseID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load pharmacy order: %w", err)
	}
	related.PharmacyOrder = order

	return related, nil
}
