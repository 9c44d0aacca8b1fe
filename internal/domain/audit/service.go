package audit

import (
	"context"

	"github.com/google/uuid"
)

// Service records timeline events and audit log entries. Writes go through
// whatever transaction is carried on the context, so callers can append
// events atomically with the mutation they describe.
type Service struct {
	timeline TimelineRepository
	logs     AuditLogRepository
}

func NewService(timeline TimelineRepository, logs AuditLogRepository) *Service {
	return &Service{timeline: timeline, logs: logs}
}

func (s *Service) AppendEvent(ctx context.Context, e *TimelineEvent) error {
	return s.timeline.Append(ctx, e)
}

func (s *Service) AppendLog(ctx context.Context, l *AuditLog) error {
	return s.logs.Append(ctx, l)
}

// RecordEvent is the common one-shot form: build and append a timeline event.
func (s *Service) RecordEvent(ctx context.Context, caseID uuid.UUID, eventType string, actorID *uuid.UUID, metadata any) error {
	e := &TimelineEvent{CaseID: caseID, EventType: eventType, ActorUserID: actorID}
	if metadata != nil {
		e.Metadata = MustMarshal(metadata)
	}
	return s.timeline.Append(ctx, e)
}

func (s *Service) CaseTimeline(ctx context.Context, caseID uuid.UUID, limit, offset int) ([]*TimelineEvent, int, error) {
	return s.timeline.ListByCase(ctx, caseID, limit, offset)
}

func (s *Service) ListLogs(ctx context.Context, limit, offset int) ([]*AuditLog, int, error) {
	return s.logs.List(ctx, limit, offset)
}
