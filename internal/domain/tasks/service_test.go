package tasks

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caseflow/caseflow/internal/domain/audit"
)

type mockTaskRepo struct {
	tasks map[uuid.UUID]*Task
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[uuid.UUID]*Task)}
}

func (m *mockTaskRepo) Create(_ context.Context, t *Task) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (m *mockTaskRepo) Update(_ context.Context, t *Task) error {
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *mockTaskRepo) ListByCase(_ context.Context, caseID uuid.UUID) ([]*Task, error) {
	var out []*Task
	for _, t := range m.tasks {
		if t.CaseID == caseID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTaskRepo) HasDoneTask(_ context.Context, caseID uuid.UUID, taskType TaskType) (bool, error) {
	for _, t := range m.tasks {
		if t.CaseID == caseID && t.Type == taskType && t.Status == StatusDone {
			return true, nil
		}
	}
	return false, nil
}

type mockCaseChecker struct{ cases map[uuid.UUID]bool }

func (m *mockCaseChecker) CaseExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.cases[id], nil
}

type mockTimelineRepo struct{ events []*audit.TimelineEvent }

func (m *mockTimelineRepo) Append(_ context.Context, e *audit.TimelineEvent) error {
	m.events = append(m.events, e)
	return nil
}

func (m *mockTimelineRepo) ListByCase(_ context.Context, caseID uuid.UUID, _, _ int) ([]*audit.TimelineEvent, int, error) {
	var out []*audit.TimelineEvent
	for _, e := range m.events {
		if e.CaseID == caseID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

type mockAuditLogRepo struct{ logs []*audit.AuditLog }

func (m *mockAuditLogRepo) Append(_ context.Context, l *audit.AuditLog) error {
	m.logs = append(m.logs, l)
	return nil
}

func (m *mockAuditLogRepo) List(_ context.Context, _, _ int) ([]*audit.AuditLog, int, error) {
	return m.logs, len(m.logs), nil
}

func newTestService() (*Service, *mockTaskRepo, *mockCaseChecker, *mockTimelineRepo, *mockAuditLogRepo) {
	repo := newMockTaskRepo()
	checker := &mockCaseChecker{cases: make(map[uuid.UUID]bool)}
	timeline := &mockTimelineRepo{}
	logs := &mockAuditLogRepo{}
	svc := NewService(repo, checker, audit.NewService(timeline, logs))
	return svc, repo, checker, timeline, logs
}

func TestCreateTaskRecordsEvent(t *testing.T) {
	svc, _, checker, timeline, _ := newTestService()
	caseID := uuid.New()
	checker.cases[caseID] = true
	actor := uuid.New()

	task := &Task{CaseID: caseID, Type: TypeWelcomeCall}
	if err := svc.CreateTask(context.Background(), task, &actor); err != nil {
		t.Fatal(err)
	}
	if task.Status != StatusPending {
		t.Errorf("status = %s, want PENDING", task.Status)
	}
	if len(timeline.events) != 1 || timeline.events[0].EventType != audit.EventTaskCreated {
		t.Fatalf("events = %+v", timeline.events)
	}
}

func TestCreateTaskUnknownCase(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	task := &Task{CaseID: uuid.New(), Type: TypeGeneral}
	if err := svc.CreateTask(context.Background(), task, nil); err != ErrCaseNotFound {
		t.Fatalf("err = %v, want ErrCaseNotFound", err)
	}
}

func TestCreateTaskInvalidType(t *testing.T) {
	svc, _, checker, _, _ := newTestService()
	caseID := uuid.New()
	checker.cases[caseID] = true
	task := &Task{CaseID: caseID, Type: "CALL"}
	if err := svc.CreateTask(context.Background(), task, nil); err == nil {
		t.Fatal("expected error for invalid type")
	}
}

func TestUpdateTaskToDoneSatisfiesWelcomeCall(t *testing.T) {
	svc, _, checker, timeline, logs := newTestService()
	caseID := uuid.New()
	checker.cases[caseID] = true

	task := &Task{CaseID: caseID, Type: TypeWelcomeCall}
	if err := svc.CreateTask(context.Background(), task, nil); err != nil {
		t.Fatal(err)
	}

	done := StatusDone
	updated, err := svc.UpdateTask(context.Background(), task.ID, Update{Status: &done}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != StatusDone {
		t.Errorf("status = %s", updated.Status)
	}

	ok, err := svc.HasDoneWelcomeCall(context.Background(), caseID)
	if err != nil || !ok {
		t.Fatalf("HasDoneWelcomeCall = %v, %v", ok, err)
	}

	// TASK_CREATED + TASK_UPDATED on the timeline, one audit entry.
	if len(timeline.events) != 2 || timeline.events[1].EventType != audit.EventTaskUpdated {
		t.Errorf("events = %+v", timeline.events)
	}
	if len(logs.logs) != 1 || logs.logs[0].Action != audit.ActionTaskUpdated {
		t.Errorf("logs = %+v", logs.logs)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	done := StatusDone
	if _, err := svc.UpdateTask(context.Background(), uuid.New(), Update{Status: &done}, nil); err != ErrTaskNotFound {
		t.Fatalf("err = %v, want ErrTaskNotFound", err)
	}
}

func TestUpdateTaskRejectsInvalidStatus(t *testing.T) {
	svc, _, checker, _, _ := newTestService()
	caseID := uuid.New()
	checker.cases[caseID] = true

	task := &Task{CaseID: caseID, Type: TypeGeneral}
	if err := svc.CreateTask(context.Background(), task, nil); err != nil {
		t.Fatal(err)
	}
	bad := TaskStatus("FINISHED")
	if _, err := svc.UpdateTask(context.Background(), task.ID, Update{Status: &bad}, nil); err == nil {
		t.Fatal("expected error for invalid status")
	}
}
