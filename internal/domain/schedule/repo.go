package schedule

import (
	"context"

	"github.com/google/uuid"
)

type ScheduleRepository interface {
	GetByCase(ctx context.Context, caseID uuid.UUID) (*Schedule, error)
	// Replace inserts or overwrites the case's schedule.
	Replace(ctx context.Context, s *Schedule) error
	ExistsForCase(ctx context.Context, caseID uuid.UUID) (bool, error)
}

type CaseChecker interface {
	CaseExists(ctx context.Context, id uuid.UUID) (bool, error)
}
