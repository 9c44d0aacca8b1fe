package cases

import (
	"time"

	"github.com/google/uuid"

	"github.com/caseflow/caseflow/internal/domain/identity"
	"github.com/caseflow/caseflow/internal/domain/workflow"
)

// Case maps to the cases table: one infusion referral moving through the
// lifecycle. The status column is only ever written through the workflow
// engine.
type Case struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	PatientID       *uuid.UUID      `db:"patient_id" json:"patient_id,omitempty"`
	ProviderOrgID   uuid.UUID       `db:"provider_org_id" json:"provider_org_id"`
	InfusionOrgID   *uuid.UUID      `db:"infusion_org_id" json:"infusion_org_id,omitempty"`
	Status          workflow.Status `db:"status" json:"status"`
	CreatedByUserID *uuid.UUID      `db:"created_by_user_id" json:"created_by_user_id,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// Prescription maps to the prescriptions table (1:1 with a case). Every
// clinical field is nullable; the intake blocker reports which of drug name,
// dose, and frequency are still missing.
type Prescription struct {
	ID             uuid.UUID `db:"id" json:"id"`
	CaseID         uuid.UUID `db:"case_id" json:"case_id"`
	DrugName       *string   `db:"drug_name" json:"drug_name,omitempty"`
	Dose           *string   `db:"dose" json:"dose,omitempty"`
	Frequency      *string   `db:"frequency" json:"frequency,omitempty"`
	Route          *string   `db:"route" json:"route,omitempty"`
	DiagnosisICD10 *string   `db:"diagnosis_icd10" json:"diagnosis_icd10,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Insurance maps to the insurance table (1:1 with a case). The row's
// existence alone satisfies the insurance blocker.
type Insurance struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CaseID    uuid.UUID `db:"case_id" json:"case_id"`
	PayerName *string   `db:"payer_name" json:"payer_name,omitempty"`
	MemberID  *string   `db:"member_id" json:"member_id,omitempty"`
	GroupID   *string   `db:"group_id" json:"group_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Detail is the case aggregate returned by GET /cases/:id.
type Detail struct {
	Case
	Patient      *identity.Patient `json:"patient,omitempty"`
	Prescription *Prescription     `json:"prescription,omitempty"`
	Insurance    *Insurance        `json:"insurance,omitempty"`
}
