package tasks

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TaskType classifies case work items. WELCOME_CALL is the only type the
// transition prerequisites inspect.
type TaskType string

const (
	TypeWelcomeCall      TaskType = "WELCOME_CALL"
	TypeDocumentFollowup TaskType = "DOCUMENT_FOLLOWUP"
	TypeGeneral          TaskType = "GENERAL"
)

var validTaskTypes = map[TaskType]bool{
	TypeWelcomeCall:      true,
	TypeDocumentFollowup: true,
	TypeGeneral:          true,
}

func (t TaskType) Valid() bool { return validTaskTypes[t] }

type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
	StatusCancelled  TaskStatus = "CANCELLED"
)

var validTaskStatuses = map[TaskStatus]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusDone:       true,
	StatusCancelled:  true,
}

func (s TaskStatus) Valid() bool { return validTaskStatuses[s] }

// Task maps to the tasks table.
type Task struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	CaseID      uuid.UUID       `db:"case_id" json:"case_id"`
	Type        TaskType        `db:"type" json:"type"`
	Status      TaskStatus      `db:"status" json:"status"`
	OwnerUserID *uuid.UUID      `db:"owner_user_id" json:"owner_user_id,omitempty"`
	DueAt       *time.Time      `db:"due_at" json:"due_at,omitempty"`
	Payload     json.RawMessage `db:"payload" json:"payload,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Update is a partial task mutation; nil fields are left unchanged.
type Update struct {
	Status      *TaskStatus     `json:"status,omitempty"`
	OwnerUserID *uuid.UUID      `json:"owner_user_id,omitempty"`
	DueAt       *time.Time      `json:"due_at,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}
