package workflow

import (
	"context"

	"github.com/google/uuid"

	"github.com/caseflow/caseflow/internal/domain/financial"
	"github.com/caseflow/caseflow/internal/domain/pharmacy"
)

// CaseView is the slice of a case the engine reasons about. The owning
// aggregate holds more; the engine only reads identity and status and, on a
// successful transition, writes the status back through the returned result.
type CaseView struct {
	ID     uuid.UUID
	Status Status
}

// Prescription is the prescription view the prerequisite and blocker checks
// evaluate. A prescription is complete when drug name, dose, and frequency
// are all present.
type Prescription struct {
	DrugName  *string
	Dose      *string
	Frequency *string
}

// MissingFields lists the incomplete prescription fields in report order.
func (p *Prescription) MissingFields() []string {
	var missing []string
	if p.DrugName == nil || *p.DrugName == "" {
		missing = append(missing, "drug_name")
	}
	if p.Dose == nil || *p.Dose == "" {
		missing = append(missing, "dose")
	}
	if p.Frequency == nil || *p.Frequency == "" {
		missing = append(missing, "frequency")
	}
	return missing
}

// Related is a snapshot of the case's 1:1 records and task state, fetched by
// the caller before evaluation. Nil pointers mean the record does not exist.
type Related struct {
	Prescription    *Prescription
	HasInsurance    bool
	Clearance       *financial.Clearance
	WelcomeCallDone bool
	HasSchedule     bool
	PharmacyOrder   *pharmacy.Order
}

// RecordSource loads the Related snapshot for a case. The storage layer
// implements it over the per-record repositories; tests implement it with
// fixed values.
type RecordSource interface {
	RelatedRecords(ctx context.Context, caseID uuid.UUID) (*Related, error)
}

// RecordSourceFunc adapts a function to the RecordSource interface.
type RecordSourceFunc func(ctx context.Context, caseID uuid.UUID) (*Related, error)

func (f RecordSourceFunc) RelatedRecords(ctx context.Context, caseID uuid.UUID) (*Related, error) {
	return f(ctx, caseID)
}
