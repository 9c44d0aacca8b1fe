package workflow

import (
	"testing"
	"time"
)

func TestBlockersEmptyCaseReportsAllSix(t *testing.T) {
	got := Blockers(&Related{})
	wantTypes := []string{
		BlockerMissingPrescription,
		BlockerMissingInsurance,
		BlockerFinancialNotCleared,
		BlockerWelcomeCallNotComplete,
		BlockerScheduleNotSet,
		BlockerPharmacyNotPushed,
	}
	if len(got) != len(wantTypes) {
		t.Fatalf("got %d blockers, want %d: %+v", len(got), len(wantTypes), got)
	}
	for i, want := range wantTypes {
		if got[i].Type != want {
			t.Errorf("blocker[%d].Type = %s, want %s", i, got[i].Type, want)
		}
		if got[i].Message == "" {
			t.Errorf("blocker[%d] has no message", i)
		}
	}
}

func TestBlockersFullyReadyCaseReportsNone(t *testing.T) {
	if got := Blockers(fullyReadyRelated()); len(got) != 0 {
		t.Fatalf("expected no blockers, got %+v", got)
	}
}

func TestBlockersIncompletePrescription(t *testing.T) {
	r := fullyReadyRelated()
	r.Prescription = &Prescription{DrugName: strptr("Infliximab")}

	got := Blockers(r)
	if len(got) != 1 {
		t.Fatalf("got %+v, want one blocker", got)
	}
	b := got[0]
	if b.Type != BlockerMissingRxFields {
		t.Fatalf("type = %s", b.Type)
	}
	if b.Message != "Prescription missing: dose, frequency" {
		t.Errorf("message = %q", b.Message)
	}
	if len(b.Fields) != 2 || b.Fields[0] != "dose" || b.Fields[1] != "frequency" {
		t.Errorf("fields = %v", b.Fields)
	}
}

func TestBlockersEmptyStringFieldsCountAsMissing(t *testing.T) {
	r := fullyReadyRelated()
	r.Prescription = &Prescription{DrugName: strptr(""), Dose: strptr("5mg/kg"), Frequency: strptr("q8w")}

	got := Blockers(r)
	if len(got) != 1 || got[0].Type != BlockerMissingRxFields {
		t.Fatalf("got %+v", got)
	}
	if len(got[0].Fields) != 1 || got[0].Fields[0] != "drug_name" {
		t.Errorf("fields = %v", got[0].Fields)
	}
}

func TestBlockersDoNotShortCircuit(t *testing.T) {
	// A missing prescription must not suppress the pharmacy check, and vice
	// versa: each of the six checks reports independently.
	r := fullyReadyRelated()
	r.Prescription = nil
	r.PharmacyOrder.PushedAt = nil

	got := Blockers(r)
	if len(got) != 2 {
		t.Fatalf("got %+v, want two blockers", got)
	}
	if got[0].Type != BlockerMissingPrescription || got[1].Type != BlockerPharmacyNotPushed {
		t.Errorf("types = %s, %s", got[0].Type, got[1].Type)
	}
}

func TestBlockersFinancialNeedsClearedAt(t *testing.T) {
	r := fullyReadyRelated()
	r.Clearance.ClearedAt = nil

	got := Blockers(r)
	if len(got) != 1 || got[0].Type != BlockerFinancialNotCleared {
		t.Fatalf("got %+v", got)
	}

	now := time.Now()
	r.Clearance.ClearedAt = &now
	if got := Blockers(r); len(got) != 0 {
		t.Fatalf("expected no blockers, got %+v", got)
	}
}

func TestBlockersUnpushedOrderStillBlocks(t *testing.T) {
	r := fullyReadyRelated()
	r.PharmacyOrder.PushedAt = nil

	got := Blockers(r)
	if len(got) != 1 || got[0].Type != BlockerPharmacyNotPushed {
		t.Fatalf("got %+v", got)
	}
}
