package cases

import (
	"context"

	"github.com/google/uuid"

	"github.com/caseflow/caseflow/internal/domain/workflow"
)

// ListFilter narrows a case listing. Nil fields are unscoped. InfusionOrgID
// matches assigned-to-that-org OR still-unassigned cases, which is what an
// infusion admin is allowed to see.
type ListFilter struct {
	Status        *workflow.Status
	ProviderOrgID *uuid.UUID
	InfusionOrgID *uuid.UUID
}

type CaseRepository interface {
	Create(ctx context.Context, c *Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*Case, error)
	// GetForUpdate loads the case row under a row lock. Only meaningful
	// inside a transaction; the status transition uses it so concurrent
	// transitions serialize on the row.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Case, error)
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Case, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status workflow.Status) error
	AssignInfusionOrg(ctx context.Context, id, orgID uuid.UUID) error
	AttachPatient(ctx context.Context, id, patientID uuid.UUID) error
	// CaseExists backs the CaseChecker interfaces the sibling domains
	// declare.
	CaseExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type PrescriptionRepository interface {
	GetByCase(ctx context.Context, caseID uuid.UUID) (*Prescription, error)
	Upsert(ctx context.Context, rx *Prescription) error
}

type InsuranceRepository interface {
	GetByCase(ctx context.Context, caseID uuid.UUID) (*Insurance, error)
	Upsert(ctx context.Context, ins *Insurance) error
	ExistsForCase(ctx context.Context, caseID uuid.UUID) (bool, error)
}
