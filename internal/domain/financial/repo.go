package financial

import (
	"context"

	"github.com/google/uuid"
)

type ClearanceRepository interface {
	GetByCase(ctx context.Context, caseID uuid.UUID) (*Clearance, error)
	// Upsert inserts the case's clearance row if absent and updates it
	// otherwise.
	Upsert(ctx context.Context, fc *Clearance) error
}

// CaseChecker verifies a case exists. The case store implements it.
type CaseChecker interface {
	CaseExists(ctx context.Context, id uuid.UUID) (bool, error)
}
