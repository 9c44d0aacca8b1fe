package pharmacy

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caseflow/caseflow/internal/domain/audit"
)

type mockOrderRepo struct {
	byCase map[uuid.UUID]*Order
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	cp := *o
	m.byCase[o.CaseID] = &cp
	return nil
}

func (m *mockOrderRepo) GetByCase(_ context.Context, caseID uuid.UUID) (*Order, error) {
	o, ok := m.byCase[caseID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) Update(_ context.Context, o *Order) error {
	cp := *o
	m.byCase[o.CaseID] = &cp
	return nil
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

func (m *mockTimelineRepo) ListByCase(_ context.Context, _ uuid.UUID, _, _ int) ([]*audit.TimelineEvent, int, error) {
	return m.events, len(m.events), nil
}

type mockAuditLogRepo struct{ logs []*audit.AuditLog }

func (m *mockAuditLogRepo) Append(_ context.Context, l *audit.AuditLog) error {
	m.logs = append(m.logs, l)
	return nil
}

func (m *mockAuditLogRepo) List(_ context.Context, _, _ int) ([]*audit.AuditLog, int, error) {
	return m.logs, len(m.logs), nil
}

func newTestService() (*Service, *mockCaseChecker, *mockTimelineRepo, *mockAuditLogRepo) {
	repo := &mockOrderRepo{byCase: make(map[uuid.UUID]*Order)}
	checker := &mockCaseChecker{cases: make(map[uuid.UUID]bool)}
	timeline := &mockTimelineRepo{}
	logs := &mockAuditLogRepo{}
	svc := NewService(repo, checker, audit.NewService(timeline, logs))
	return svc, checker, timeline, logs
}

func TestPushCreatesOrder(t *testing.T) {
	svc, checker, timeline, logs := newTestService()
	caseID := uuid.New()
	checker.cases[caseID] = true
	shipTo := "Main Infusion Center"

	order, err := svc.Push(context.Background(), caseID, PushRequest{ShipTo: &shipTo}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if order.PushedAt == nil {
		t.Error("pushed_at not set")
	}
	if order.FulfillmentStatus != FulfillmentNotStarted {
		t.Errorf("fulfillment = %s", order.FulfillmentStatus)
	}
	if len(timeline.events) != 1 || timeline.events[0].EventType != audit.EventPharmacyPushed {
		t.Fatalf("events = %+v", timeline.events)
	}
	if len(logs.logs) != 1 || logs.logs[0].Action != audit.ActionPharmacyPushed {
		t.Fatalf("logs = %+v", logs.logs)
	}
}

func TestPushTwiceConflicts(t *testing.T) {
	svc, checker, _, _ := newTestService()
	caseID := uuid.New()
	checker.cases[caseID] = true

	if _, err := svc.Push(context.Background(), caseID, PushRequest{}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Push(context.Background(), caseID, PushRequest{}, nil); err != ErrOrderExists {
		t.Fatalf("err = %v, want ErrOrderExists", err)
	}
}

func TestPushUnknownCase(t *testing.T) {
	svc, _, _, _ := newTestService()
	if _, err := svc.Push(context.Background(), uuid.New(), PushRequest{}, nil); err != ErrCaseNotFound {
		t.Fatalf("err = %v", err)
	}
}

func TestApplyUpdatesFulfillment(t *testing.T) {
	svc, checker, timeline, _ := newTestService()
	caseID := uuid.New()
	checker.cases[caseID] = true

	if _, err := svc.Push(context.Background(), caseID, PushRequest{}, nil); err != nil {
		t.Fatal(err)
	}

	ready := FulfillmentReady
	ndc := "0069-0187-01"
	order, err := svc.Apply(context.Background(), caseID, Update{FulfillmentStatus: &ready, NDC: &ndc}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if order.FulfillmentStatus != FulfillmentReady {
		t.Errorf("fulfillment = %s", order.FulfillmentStatus)
	}
	if order.NDC == nil || *order.NDC != ndc {
		t.Errorf("ndc = %v", order.NDC)
	}
	if order.PushedAt == nil {
		t.Error("pushed_at lost on update")
	}

	last := timeline.events[len(timeline.events)-1]
	if last.EventType != audit.EventPharmacyOrderUpdated {
		t.Errorf("event = %s", last.EventType)
	}
}

func TestApplyRejectsInvalidFulfillment(t *testing.T) {
	svc, checker, _, _ := newTestService()
	caseID := uuid.New()
	checker.cases[caseID] = true
	if _, err := svc.Push(context.Background(), caseID, PushRequest{}, nil); err != nil {
		t.Fatal(err)
	}

	bad := FulfillmentStatus("DELIVERED")
	if _, err := svc.Apply(context.Background(), caseID, Update{FulfillmentStatus: &bad}, nil); err == nil {
		t.Fatal("expected error for invalid fulfillment status")
	}
}

func TestApplyWithoutOrder(t *testing.T) {
	svc, checker, _, _ := newTestService()
	caseID := uuid.New()
	checker.cases[caseID] = true

	due := time.Now()
	if _, err := svc.Apply(context.Background(), caseID, Update{RequestedArrivalDate: &due}, nil); err != ErrOrderNotFound {
		t.Fatalf("err = %v", err)
	}
}
