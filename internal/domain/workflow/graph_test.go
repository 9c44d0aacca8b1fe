package workflow

import "testing"

func TestGraphEveryNonTerminalCanDiscontinue(t *testing.T) {
	g := NewGraph()
	for _, s := range AllStatuses {
		if s == StatusDiscontinued {
			continue
		}
		if !g.CanTransition(s, StatusDiscontinued) {
			t.Errorf("expected %s -> DISCONTINUED to be allowed", s)
		}
	}
}

func TestGraphDiscontinuedIsTerminal(t *testing.T) {
	g := NewGraph()
	if got := len(g.Allowed(StatusDiscontinued)); got != 0 {
		t.Fatalf("DISCONTINUED should have no outgoing edges, got %d", got)
	}
	if !g.Terminal(StatusDiscontinued) {
		t.Fatal("DISCONTINUED should be terminal")
	}
	for _, s := range AllStatuses {
		if s != StatusDiscontinued && g.Terminal(s) {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestGraphHappyPath(t *testing.T) {
	g := NewGraph()
	path := []Status{
		StatusReferralReceived,
		StatusClinicalCompletenessCheck,
		StatusBenefitsInvestigation,
		StatusPriorAuthSubmitted,
		StatusPriorAuthApproved,
		StatusFinancialCounselingPending,
		StatusFinancialCleared,
		StatusWelcomeCallPending,
		StatusWelcomeCallCompleted,
		StatusSchedulingReady,
		StatusScheduled,
		StatusPharmacyPushPending,
		StatusPharmacyPushed,
		StatusDrugFulfillmentInProgress,
		StatusDrugReady,
		StatusInfusionCompleted,
		StatusOnTherapy,
		StatusDiscontinued,
	}
	for i := 0; i < len(path)-1; i++ {
		if !g.CanTransition(path[i], path[i+1]) {
			t.Errorf("expected %s -> %s to be allowed", path[i], path[i+1])
		}
	}
}

func TestGraphBenefitsInvestigationBranches(t *testing.T) {
	g := NewGraph()
	if !g.CanTransition(StatusBenefitsInvestigation, StatusPriorAuthSubmitted) {
		t.Error("BENEFITS_INVESTIGATION should reach PRIOR_AUTH_SUBMITTED")
	}
	if !g.CanTransition(StatusBenefitsInvestigation, StatusFinancialCounselingPending) {
		t.Error("BENEFITS_INVESTIGATION should reach FINANCIAL_COUNSELING_PENDING")
	}
}

func TestGraphRejectsSkipsAndBackwardsEdges(t *testing.T) {
	g := NewGraph()
	cases := []struct{ from, to Status }{
		{StatusReferralReceived, StatusBenefitsInvestigation},
		{StatusReferralReceived, StatusOnTherapy},
		{StatusScheduled, StatusPharmacyPushed},
		{StatusOnTherapy, StatusReferralReceived},
		{StatusWelcomeCallCompleted, StatusWelcomeCallPending},
		{StatusDiscontinued, StatusReferralReceived},
	}
	for _, tc := range cases {
		if g.CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestGraphUnknownStatusHasNoEdges(t *testing.T) {
	g := NewGraph()
	if got := g.Allowed(Status("NOT_A_STATUS")); len(got) != 0 {
		t.Fatalf("unknown status should have no edges, got %v", got)
	}
	if g.CanTransition(Status("NOT_A_STATUS"), StatusReferralReceived) {
		t.Fatal("unknown status should not transition anywhere")
	}
}

func TestStatusEnumIsFrozen(t *testing.T) {
	if len(AllStatuses) != 18 {
		t.Fatalf("expected 18 statuses, got %d", len(AllStatuses))
	}
	for _, s := range AllStatuses {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("PAUSED").Valid() {
		t.Error("PAUSED is not a lifecycle status")
	}
}
