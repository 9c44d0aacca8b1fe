package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

type OrderRepository interface {
	Create(ctx context.Context, o *Order) error
	GetByCase(ctx context.Context, caseID uuid.UUID) (*Order, error)
	Update(ctx context.Context, o *Order) error
}

type CaseChecker interface {
	CaseExists(ctx context.Context, id uuid.UUID) (bool, error)
}
