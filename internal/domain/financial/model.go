package financial

import (
	"time"

	"github.com/google/uuid"
)

// Clearance maps to the financial_clearances table. At most one row exists
// per case; it accumulates benefits-verification and counseling outcomes
// until the case can be financially cleared.
type Clearance struct {
	ID                      uuid.UUID  `db:"id" json:"id"`
	CaseID                  uuid.UUID  `db:"case_id" json:"case_id"`
	BenefitsVerifiedAt      *time.Time `db:"benefits_verified_at" json:"benefits_verified_at,omitempty"`
	CostEstimateAmount      *float64   `db:"cost_estimate_amount" json:"cost_estimate_amount,omitempty"`
	PatientAcknowledgedCost bool       `db:"patient_acknowledged_cost" json:"patient_acknowledged_cost"`
	AssistanceProgram       *string    `db:"assistance_program" json:"assistance_program,omitempty"`
	ClearedAt               *time.Time `db:"cleared_at" json:"cleared_at,omitempty"`
	CreatedAt               time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time  `db:"updated_at" json:"updated_at"`
}

// Cleared reports whether the patient acknowledged the cost estimate and the
// clearance has been marked cleared.
func (c *Clearance) Cleared() bool {
	return c != nil && c.PatientAcknowledgedCost && c.ClearedAt != nil
}
