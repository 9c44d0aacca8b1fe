package audit

import (
	"context"

	"github.com/google/uuid"
)

type TimelineRepository interface {
	Append(ctx context.Context, e *TimelineEvent) error
	ListByCase(ctx context.Context, caseID uuid.UUID, limit, offset int) ([]*TimelineEvent, int, error)
}

type AuditLogRepository interface {
	Append(ctx context.Context, l *AuditLog) error
	List(ctx context.Context, limit, offset int) ([]*AuditLog, int, error)
}
