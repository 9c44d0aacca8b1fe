package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Timeline event types. Every mutation of a case appends exactly one of
// these to the case timeline.
const (
	EventCaseCreated          = "CASE_CREATED"
	EventStatusChanged        = "STATUS_CHANGED"
	EventInfusionOrgAssigned  = "INFUSION_ORG_ASSIGNED"
	EventPatientAttached      = "PATIENT_ATTACHED"
	EventPrescriptionUpdated  = "PRESCRIPTION_UPDATED"
	EventInsuranceUpdated     = "INSURANCE_UPDATED"
	EventTaskCreated          = "TASK_CREATED"
	EventTaskUpdated          = "TASK_UPDATED"
	EventFinancialUpdated     = "FINANCIAL_UPDATED"
	EventScheduleSet          = "SCHEDULE_SET"
	EventPharmacyPushed       = "PHARMACY_PUSHED"
	EventPharmacyOrderUpdated = "PHARMACY_ORDER_UPDATED"
)

// Audit log actions mirror the timeline event vocabulary for actions that
// cross the system-wide audit trail.
const (
	ActionCaseCreated    = "CASE_CREATED"
	ActionStatusChanged  = "STATUS_CHANGED"
	ActionTaskUpdated    = "TASK_UPDATED"
	ActionPharmacyPushed = "PHARMACY_PUSHED"
)

// TimelineEvent is an append-only, case-scoped record of something that
// happened to a case. Rows are never updated or deleted.
type TimelineEvent struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	CaseID      uuid.UUID       `db:"case_id" json:"case_id"`
	EventType   string          `db:"event_type" json:"event_type"`
	ActorUserID *uuid.UUID      `db:"actor_user_id" json:"actor_user_id,omitempty"`
	Metadata    json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// AuditLog is an append-only, system-wide audit trail entry.
type AuditLog struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	ActorUserID *uuid.UUID      `db:"actor_user_id" json:"actor_user_id,omitempty"`
	Action      string          `db:"action" json:"action"`
	EntityType  string          `db:"entity_type" json:"entity_type"`
	EntityID    *uuid.UUID      `db:"entity_id" json:"entity_id,omitempty"`
	Metadata    json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
