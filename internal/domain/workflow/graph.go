package workflow

import "sort"

// StatusSet is the set of statuses an edge check consults.
type StatusSet map[Status]struct{}

func newStatusSet(statuses ...Status) StatusSet {
	set := make(StatusSet, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

// Contains reports membership.
func (s StatusSet) Contains(status Status) bool {
	_, ok := s[status]
	return ok
}

// Sorted returns the members in lexical order, for stable error payloads.
func (s StatusSet) Sorted() []Status {
	out := make([]Status, 0, len(s))
	for status := range s {
		out = append(out, status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// StateGraph is the directed graph of permitted status transitions. It is
// built once and never mutated afterwards; the engine holds it by reference
// and only reads it.
type StateGraph struct {
	edges map[Status]StatusSet
}

// NewGraph builds the lifecycle transition graph. Every non-terminal status
// may move to DISCONTINUED; DISCONTINUED itself has no outgoing edges.
func NewGraph() *StateGraph {
	edges := map[Status]StatusSet{
		StatusReferralReceived:           newStatusSet(StatusClinicalCompletenessCheck),
		StatusClinicalCompletenessCheck:  newStatusSet(StatusBenefitsInvestigation),
		StatusBenefitsInvestigation:      newStatusSet(StatusPriorAuthSubmitted, StatusFinancialCounselingPending),
		StatusPriorAuthSubmitted:         newStatusSet(StatusPriorAuthApproved),
		StatusPriorAuthApproved:          newStatusSet(StatusFinancialCounselingPending),
		StatusFinancialCounselingPending: newStatusSet(StatusFinancialCleared),
		StatusFinancialCleared:           newStatusSet(StatusWelcomeCallPending),
		StatusWelcomeCallPending:         newStatusSet(StatusWelcomeCallCompleted),
		StatusWelcomeCallCompleted:       newStatusSet(StatusSchedulingReady),
		StatusSchedulingReady:            newStatusSet(StatusScheduled),
		StatusScheduled:                  newStatusSet(StatusPharmacyPushPending),
		StatusPharmacyPushPending:        newStatusSet(StatusPharmacyPushed),
		StatusPharmacyPushed:             newStatusSet(StatusDrugFulfillmentInProgress),
		StatusDrugFulfillmentInProgress:  newStatusSet(StatusDrugReady),
		StatusDrugReady:                  newStatusSet(StatusInfusionCompleted),
		StatusInfusionCompleted:          newStatusSet(StatusOnTherapy),
		StatusOnTherapy:                  newStatusSet(),
		StatusDiscontinued:               newStatusSet(),
	}
	for from, targets := range edges {
		if from != StatusDiscontinued {
			targets[StatusDiscontinued] = struct{}{}
		}
	}
	return &StateGraph{edges: edges}
}

// DefaultGraph is the canonical lifecycle graph shared by the service.
var DefaultGraph = NewGraph()

// Allowed returns the set of statuses reachable from the given status. An
// unknown status yields the empty set, so any transition out of it fails the
// edge check rather than erroring.
func (g *StateGraph) Allowed(from Status) StatusSet {
	return g.edges[from]
}

// CanTransition reports whether the edge from → to exists.
func (g *StateGraph) CanTransition(from, to Status) bool {
	return g.edges[from].Contains(to)
}

// Terminal reports whether a status has no outgoing edges.
func (g *StateGraph) Terminal(s Status) bool {
	return len(g.edges[s]) == 0 && s.Valid()
}
