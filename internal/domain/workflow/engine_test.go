package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/caseflow/caseflow/internal/domain/audit"
	"github.com/caseflow/caseflow/internal/domain/financial"
	"github.com/caseflow/caseflow/internal/domain/pharmacy"
)

type fixedSource struct {
	related *Related
	err     error
}

func (f *fixedSource) RelatedRecords(_ context.Context, _ uuid.UUID) (*Related, error) {
	return f.related, f.err
}

func strptr(s string) *string { return &s }

func timeptr(t time.Time) *time.Time { return &t }

func newTestEngine(r *Related) *Engine {
	if r == nil {
		r = &Related{}
	}
	return NewEngine(NewGraph(), &fixedSource{related: r})
}

func testCase(status Status) *CaseView {
	return &CaseView{ID: uuid.New(), Status: status}
}

// fullyReadyRelated satisfies every prerequisite and blocker check.
func fullyReadyRelated() *Related {
	now := time.Now()
	return &Related{
		Prescription: &Prescription{
			DrugName:  strptr("Infliximab"),
			Dose:      strptr("5mg/kg"),
			Frequency: strptr("q8w"),
		},
		HasInsurance: true,
		Clearance: &financial.Clearance{
			PatientAcknowledgedCost: true,
			ClearedAt:               timeptr(now),
		},
		WelcomeCallDone: true,
		HasSchedule:     true,
		PharmacyOrder: &pharmacy.Order{
			PushedAt:          timeptr(now),
			FulfillmentStatus: pharmacy.FulfillmentReady,
		},
	}
}

func TestTransitionSuccessMutatesAndEmitsRecords(t *testing.T) {
	e := newTestEngine(nil)
	c := testCase(StatusReferralReceived)
	actor := uuid.New()

	res, err := e.Transition(context.Background(), c, StatusClinicalCompletenessCheck, &actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != StatusClinicalCompletenessCheck {
		t.Fatalf("case status = %s, want CLINICAL_COMPLETENESS_CHECK", c.Status)
	}
	if res.Case != c {
		t.Fatal("result should carry the same case view")
	}

	if res.Event.EventType != audit.EventStatusChanged {
		t.Errorf("event type = %s, want STATUS_CHANGED", res.Event.EventType)
	}
	if res.Event.CaseID != c.ID {
		t.Error("event case id mismatch")
	}
	if res.Event.ActorUserID == nil || *res.Event.ActorUserID != actor {
		t.Error("event actor mismatch")
	}

	var payload audit.StatusChangePayload
	if err := json.Unmarshal(res.Event.Metadata, &payload); err != nil {
		t.Fatalf("unmarshal event metadata: %v", err)
	}
	if payload.OldStatus != "REFERRAL_RECEIVED" || payload.NewStatus != "CLINICAL_COMPLETENESS_CHECK" {
		t.Errorf("payload = %+v", payload)
	}

	if res.Audit.Action != audit.ActionStatusChanged || res.Audit.EntityType != "case" {
		t.Errorf("audit entry = %+v", res.Audit)
	}
	if res.Audit.EntityID == nil || *res.Audit.EntityID != c.ID {
		t.Error("audit entity id mismatch")
	}
	if string(res.Audit.Metadata) != string(res.Event.Metadata) {
		t.Error("audit and event metadata should match")
	}
}

func TestTransitionInvalidEdge(t *testing.T) {
	e := newTestEngine(fullyReadyRelated())
	c := testCase(StatusReferralReceived)

	_, err := e.Transition(context.Background(), c, StatusOnTherapy, nil)
	var edgeErr *InvalidEdgeError
	if !errors.As(err, &edgeErr) {
		t.Fatalf("expected InvalidEdgeError, got %v", err)
	}
	if edgeErr.From != StatusReferralReceived || edgeErr.To != StatusOnTherapy {
		t.Errorf("edge error = %+v", edgeErr)
	}
	want := []Status{StatusClinicalCompletenessCheck, StatusDiscontinued}
	if len(edgeErr.Allowed) != len(want) {
		t.Fatalf("allowed = %v, want %v", edgeErr.Allowed, want)
	}
	for i, s := range want {
		if edgeErr.Allowed[i] != s {
			t.Errorf("allowed[%d] = %s, want %s", i, edgeErr.Allowed[i], s)
		}
	}
	if c.Status != StatusReferralReceived {
		t.Error("failed transition must not mutate the case")
	}
}

func TestTransitionFromTerminalStatus(t *testing.T) {
	e := newTestEngine(nil)
	c := testCase(StatusDiscontinued)

	_, err := e.Transition(context.Background(), c, StatusReferralReceived, nil)
	var edgeErr *InvalidEdgeError
	if !errors.As(err, &edgeErr) {
		t.Fatalf("expected InvalidEdgeError, got %v", err)
	}
	if len(edgeErr.Allowed) != 0 {
		t.Errorf("terminal status should expose no allowed edges, got %v", edgeErr.Allowed)
	}
}

func TestTransitionEdgeCheckRunsBeforePrerequisites(t *testing.T) {
	// SCHEDULED -> PHARMACY_PUSHED has no edge; the prerequisite table for
	// PHARMACY_PUSHED would accept the source status, so a BlockedError here
	// would mean the checks ran in the wrong order.
	e := newTestEngine(&Related{})
	c := testCase(StatusScheduled)

	_, err := e.Transition(context.Background(), c, StatusPharmacyPushed, nil)
	var edgeErr *InvalidEdgeError
	if !errors.As(err, &edgeErr) {
		t.Fatalf("expected InvalidEdgeError, got %v", err)
	}
}

func TestTransitionBlockedFinancialClearedChain(t *testing.T) {
	tests := []struct {
		name      string
		clearance *financial.Clearance
		want      string
	}{
		{"no record", nil, "Financial clearance record does not exist."},
		{"not acknowledged", &financial.Clearance{}, "Patient has not acknowledged cost."},
		{
			"not cleared",
			&financial.Clearance{PatientAcknowledgedCost: true},
			"Financial clearance has not been marked as cleared.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(&Related{Clearance: tt.clearance})
			c := testCase(StatusFinancialCounselingPending)

			_, err := e.Transition(context.Background(), c, StatusFinancialCleared, nil)
			var blocked *BlockedError
			if !errors.As(err, &blocked) {
				t.Fatalf("expected BlockedError, got %v", err)
			}
			if len(blocked.Reasons) != 1 || blocked.Reasons[0] != tt.want {
				t.Errorf("reasons = %v, want exactly [%q]", blocked.Reasons, tt.want)
			}
			if c.Status != StatusFinancialCounselingPending {
				t.Error("blocked transition must not mutate the case")
			}
		})
	}
}

func TestTransitionFinancialClearedSucceedsWhenCleared(t *testing.T) {
	now := time.Now()
	e := newTestEngine(&Related{
		Clearance: &financial.Clearance{PatientAcknowledgedCost: true, ClearedAt: &now},
	})
	c := testCase(StatusFinancialCounselingPending)

	if _, err := e.Transition(context.Background(), c, StatusFinancialCleared, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != StatusFinancialCleared {
		t.Errorf("status = %s", c.Status)
	}
}

func TestTransitionBlockedReportsAllFailures(t *testing.T) {
	// SCHEDULED has two prerequisites; starting from SCHEDULING_READY the
	// status check passes but a missing schedule still blocks.
	e := newTestEngine(&Related{})
	c := testCase(StatusSchedulingReady)

	_, err := e.Transition(context.Background(), c, StatusScheduled, nil)
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected BlockedError, got %v", err)
	}
	if blocked.To != StatusScheduled {
		t.Errorf("blocked.To = %s", blocked.To)
	}
	want := []string{"Schedule must be created before marking as SCHEDULED."}
	if len(blocked.Reasons) != 1 || blocked.Reasons[0] != want[0] {
		t.Errorf("reasons = %v, want %v", blocked.Reasons, want)
	}
}

func TestTransitionBlockedSchedulingReadyBothReasons(t *testing.T) {
	// Reaching SCHEDULING_READY requires WELCOME_CALL_COMPLETED plus a
	// cleared financial record; from the wrong source with no clearance both
	// failures are reported, in check order.
	e := NewEngine(
		&StateGraph{edges: map[Status]StatusSet{
			StatusWelcomeCallPending: newStatusSet(StatusSchedulingReady),
		}},
		&fixedSource{related: &Related{}},
	)
	c := testCase(StatusWelcomeCallPending)

	_, err := e.Transition(context.Background(), c, StatusSchedulingReady, nil)
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected BlockedError, got %v", err)
	}
	want := []string{
		"Welcome call must be completed first.",
		"Financial clearance must be completed first.",
	}
	if len(blocked.Reasons) != 2 {
		t.Fatalf("reasons = %v, want both failures", blocked.Reasons)
	}
	for i := range want {
		if blocked.Reasons[i] != want[i] {
			t.Errorf("reasons[%d] = %q, want %q", i, blocked.Reasons[i], want[i])
		}
	}
}

func TestTransitionWelcomeCallCompletedRequiresDoneTask(t *testing.T) {
	e := newTestEngine(&Related{WelcomeCallDone: false})
	c := testCase(StatusWelcomeCallPending)

	_, err := e.Transition(context.Background(), c, StatusWelcomeCallCompleted, nil)
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected BlockedError, got %v", err)
	}

	e = newTestEngine(&Related{WelcomeCallDone: true})
	c = testCase(StatusWelcomeCallPending)
	if _, err := e.Transition(context.Background(), c, StatusWelcomeCallCompleted, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransitionDrugReadyFulfillmentGate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		fulfillment pharmacy.FulfillmentStatus
		wantBlocked bool
	}{
		{pharmacy.FulfillmentNotStarted, true},
		{pharmacy.FulfillmentInProgress, true},
		{pharmacy.FulfillmentReady, false},
		{pharmacy.FulfillmentShipped, false},
		{pharmacy.FulfillmentReceived, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.fulfillment), func(t *testing.T) {
			e := newTestEngine(&Related{
				PharmacyOrder: &pharmacy.Order{PushedAt: &now, FulfillmentStatus: tt.fulfillment},
			})
			c := testCase(StatusDrugFulfillmentInProgress)

			_, err := e.Transition(context.Background(), c, StatusDrugReady, nil)
			if tt.wantBlocked {
				var blocked *BlockedError
				if !errors.As(err, &blocked) {
					t.Fatalf("expected BlockedError, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestTransitionPharmacyPushedRequiresPushedOrder(t *testing.T) {
	e := newTestEngine(&Related{PharmacyOrder: &pharmacy.Order{}})
	c := testCase(StatusPharmacyPushPending)

	_, err := e.Transition(context.Background(), c, StatusPharmacyPushed, nil)
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected BlockedError, got %v", err)
	}
	if blocked.Reasons[0] != "Pharmacy order must be pushed before transitioning." {
		t.Errorf("reasons = %v", blocked.Reasons)
	}
}

func TestPharmacyPushedPrerequisiteAcceptsScheduled(t *testing.T) {
	// The prerequisite table accepts SCHEDULED as a source even though the
	// graph only enters PHARMACY_PUSHED from PHARMACY_PUSH_PENDING.
	now := time.Now()
	r := &Related{PharmacyOrder: &pharmacy.Order{PushedAt: &now}}
	for _, status := range []Status{StatusScheduled, StatusPharmacyPushPending} {
		c := &CaseView{ID: uuid.New(), Status: status}
		if reasons := checkPrerequisites(c, r, StatusPharmacyPushed); len(reasons) != 0 {
			t.Errorf("from %s: reasons = %v, want none", status, reasons)
		}
	}
	c := &CaseView{ID: uuid.New(), Status: StatusSchedulingReady}
	reasons := checkPrerequisites(c, r, StatusPharmacyPushed)
	if len(reasons) != 1 || reasons[0] != "Case must be in SCHEDULED or PHARMACY_PUSH_PENDING status." {
		t.Errorf("reasons = %v", reasons)
	}
}

func TestTransitionDiscontinuedNeverBlocked(t *testing.T) {
	e := newTestEngine(&Related{})
	for _, s := range AllStatuses {
		if s == StatusDiscontinued {
			continue
		}
		c := testCase(s)
		if _, err := e.Transition(context.Background(), c, StatusDiscontinued, nil); err != nil {
			t.Errorf("from %s: %v", s, err)
		}
	}
}

func TestTransitionRecordSourceError(t *testing.T) {
	wantErr := errors.New("db down")
	e := NewEngine(NewGraph(), &fixedSource{err: wantErr})
	c := testCase(StatusFinancialCounselingPending)

	_, err := e.Transition(context.Background(), c, StatusFinancialCleared, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
	if c.Status != StatusFinancialCounselingPending {
		t.Error("case must not change when record loading fails")
	}
}

func TestHappyPathEndToEnd(t *testing.T) {
	e := newTestEngine(fullyReadyRelated())
	c := testCase(StatusReferralReceived)
	// Lifecycle order includes the PRIOR_AUTH branch and ends in DISCONTINUED.
	for _, target := range AllStatuses[1:] {
		prev := c.Status
		res, err := e.Transition(context.Background(), c, target, nil)
		if err != nil {
			t.Fatalf("%s -> %s: %v", prev, target, err)
		}
		if res.Case.Status != target {
			t.Fatalf("status = %s, want %s", res.Case.Status, target)
		}
	}
	if c.Status != StatusDiscontinued {
		t.Fatalf("final status = %s", c.Status)
	}
}
