package tasks

import (
	"context"

	"github.com/google/uuid"
)

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	Update(ctx context.Context, t *Task) error
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]*Task, error)
	// HasDoneTask reports whether the case has a task of the given type in
	// status DONE. The workflow prerequisites consult it for WELCOME_CALL.
	HasDoneTask(ctx context.Context, caseID uuid.UUID, taskType TaskType) (bool, error)
}

// CaseChecker verifies a case exists before work is attached to it. The case
// store implements it.
type CaseChecker interface {
	CaseExists(ctx context.Context, id uuid.UUID) (bool, error)
}
