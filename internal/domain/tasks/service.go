package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caseflow/caseflow/internal/domain/audit"
)

var (
	ErrCaseNotFound = errors.New("case not found")
	ErrTaskNotFound = errors.New("task not found")
)

type Service struct {
	repo  TaskRepository
	cases CaseChecker
	audit *audit.Service
}

func NewService(repo TaskRepository, cases CaseChecker, auditSvc *audit.Service) *Service {
	return &Service{repo: repo, cases: cases, audit: auditSvc}
}

// CreateTask attaches a task to a case and records a TASK_CREATED event.
func (s *Service) CreateTask(ctx context.Context, t *Task, actorID *uuid.UUID) error {
	if !t.Type.Valid() {
		return fmt.Errorf("invalid task type %q", t.Type)
	}
	if t.Status != "" && !t.Status.Valid() {
		return fmt.Errorf("invalid task status %q", t.Status)
	}
	exists, err := s.cases.CaseExists(ctx, t.CaseID)
	if err != nil {
		return fmt.Errorf("check case: %w", err)
	}
	if !exists {
		return ErrCaseNotFound
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return s.audit.RecordEvent(ctx, t.CaseID, audit.EventTaskCreated, actorID,
		audit.TaskPayload{TaskID: t.ID.String(), TaskType: string(t.Type)})
}

func (s *Service) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*Task, error) {
	exists, err := s.cases.CaseExists(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("check case: %w", err)
	}
	if !exists {
		return nil, ErrCaseNotFound
	}
	return s.repo.ListByCase(ctx, caseID)
}

// UpdateTask applies a partial update and records a TASK_UPDATED timeline
// event plus an audit entry. A WELCOME_CALL task moved to DONE is what
// satisfies the welcome-call transition prerequisite.
func (s *Service) UpdateTask(ctx context.Context, id uuid.UUID, upd Update, actorID *uuid.UUID) (*Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, fmt.Errorf("invalid task status %q", *upd.Status)
		}
		t.Status = *upd.Status
	}
	if upd.OwnerUserID != nil {
		t.OwnerUserID = upd.OwnerUserID
	}
	if upd.DueAt != nil {
		t.DueAt = upd.DueAt
	}
	if upd.Payload != nil {
		t.Payload = upd.Payload
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	payload := audit.TaskPayload{TaskID: t.ID.String(), TaskType: string(t.Type), Status: string(t.Status)}
	if err := s.audit.RecordEvent(ctx, t.CaseID, audit.EventTaskUpdated, actorID, payload); err != nil {
		return nil, err
	}
	if err := s.audit.AppendLog(ctx, &audit.AuditLog{
		ActorUserID: actorID,
		Action:      audit.ActionTaskUpdated,
		EntityType:  "task",
		EntityID:    &t.ID,
		Metadata:    audit.MustMarshal(payload),
	}); err != nil {
		return nil, err
	}
	return t, nil
}

// HasDoneWelcomeCall is consulted by the workflow record source.
func (s *Service) HasDoneWelcomeCall(ctx context.Context, caseID uuid.UUID) (bool, error) {
	return s.repo.HasDoneTask(ctx, caseID, TypeWelcomeCall)
}
