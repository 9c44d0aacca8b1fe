package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caseflow/caseflow/internal/domain/audit"
)

var ErrCaseNotFound = errors.New("case not found")

type Service struct {
	repo  ScheduleRepository
	cases CaseChecker
	audit *audit.Service
}

func NewService(repo ScheduleRepository, cases CaseChecker, auditSvc *audit.Service) *Service {
	return &Service{repo: repo, cases: cases, audit: auditSvc}
}

// Set creates or replaces the case's appointment and records a SCHEDULE_SET
// event. Setting the schedule does not change case status; the SCHEDULED
// transition checks for its existence.
func (s *Service) Set(ctx context.Context, sched *Schedule, actorID *uuid.UUID) error {
	if sched.DateTime.IsZero() {
		return fmt.Errorf("date_time is required")
	}
	exists, err := s.cases.CaseExists(ctx, sched.CaseID)
	if err != nil {
		return fmt.Errorf("check case: %w", err)
	}
	if !exists {
		return ErrCaseNotFound
	}

	if err := s.repo.Replace(ctx, sched); err != nil {
		return fmt.Errorf("set schedule: %w", err)
	}
	return s.audit.RecordEvent(ctx, sched.CaseID, audit.EventScheduleSet, actorID,
		audit.SchedulePayload{DateTime: sched.DateTime.UTC().Format(time.RFC3339)})
}

// GetByCase returns the case's schedule, or nil when none is set.
func (s *Service) GetByCase(ctx context.Context, caseID uuid.UUID) (*Schedule, error) {
	exists, err := s.cases.CaseExists(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("check case: %w", err)
	}
	if !exists {
		return nil, ErrCaseNotFound
	}

	sched, err := s.repo.GetByCase(ctx, caseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return sched, err
}
