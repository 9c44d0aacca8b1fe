package audit

import "encoding/json"

// Metadata payloads are closed types rather than free-form maps so that
// every event carries a documented shape.

// CaseCreatedPayload is the metadata of CASE_CREATED events.
type CaseCreatedPayload struct {
	Status string `json:"status"`
}

// StatusChangePayload is the metadata of STATUS_CHANGED events and audit
// entries.
type StatusChangePayload struct {
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// AssignmentPayload is the metadata of INFUSION_ORG_ASSIGNED events.
type AssignmentPayload struct {
	InfusionOrgID string `json:"infusion_org_id"`
}

// TaskPayload is the metadata of TASK_CREATED / TASK_UPDATED events.
type TaskPayload struct {
	TaskID   string `json:"task_id"`
	TaskType string `json:"task_type"`
	Status   string `json:"status,omitempty"`
}

// FieldChangePayload is the metadata of record-upsert events; it lists the
// field names the caller changed, not their values.
type FieldChangePayload struct {
	Fields []string `json:"fields"`
}

// SchedulePayload is the metadata of SCHEDULE_SET events.
type SchedulePayload struct {
	DateTime string `json:"date_time"`
}

// PharmacyOrderPayload is the metadata of PHARMACY_PUSHED events and audit
// entries.
type PharmacyOrderPayload struct {
	OrderID  string `json:"order_id"`
	ShipTo   string `json:"ship_to,omitempty"`
	PushedAt string `json:"pushed_at,omitempty"`
}

// MustMarshal serializes a metadata payload. The payload types above contain
// only marshalable fields, so failure indicates a programming error.
func MustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
