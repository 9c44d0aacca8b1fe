package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/caseflow/caseflow/internal/domain/audit"
)

// TransitionResult is a successful transition: the mutated case view plus
// the unsaved timeline event and audit log entry describing it. The caller
// persists all three in one transaction.
type TransitionResult struct {
	Case  *CaseView
	Event *audit.TimelineEvent
	Audit *audit.AuditLog
}

// Engine validates and applies case status transitions. It performs no
// writes of its own; on success it mutates the in-memory case view and hands
// the records back for the caller to persist atomically.
type Engine struct {
	graph   *StateGraph
	records RecordSource
}

func NewEngine(graph *StateGraph, records RecordSource) *Engine {
	return &Engine{graph: graph, records: records}
}

// Transition attempts to move the case to target. Failures leave the case
// untouched and are one of exactly two kinds: *InvalidEdgeError when the
// graph has no such edge, *BlockedError when prerequisites are unmet. The
// edge check always runs first.
func (e *Engine) Transition(ctx context.Context, c *CaseView, target Status, actorID *uuid.UUID) (*TransitionResult, error) {
	from := c.Status

	if !e.graph.CanTransition(from, target) {
		return nil, &InvalidEdgeError{From: from, To: target, Allowed: e.graph.Allowed(from).Sorted()}
	}

	related, err := e.records.RelatedRecords(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("load related records: %w", err)
	}
	if reasons := checkPrerequisites(c, related, target); len(reasons) > 0 {
		return nil, &BlockedError{To: target, Reasons: reasons}
	}

	c.Status = target

	meta := audit.MustMarshal(audit.StatusChangePayload{
		OldStatus: string(from),
		NewStatus: string(target),
	})
	return &TransitionResult{
		Case: c,
		Event: &audit.TimelineEvent{
			CaseID:      c.ID,
			EventType:   audit.EventStatusChanged,
			ActorUserID: actorID,
			Metadata:    meta,
		},
		Audit: &audit.AuditLog{
			ActorUserID: actorID,
			Action:      audit.ActionStatusChanged,
			EntityType:  "case",
			EntityID:    &c.ID,
			Metadata:    meta,
		},
	}, nil
}

// Blockers loads the case's related records and reports the advisory
// blocker list.
func (e *Engine) Blockers(ctx context.Context, c *CaseView) ([]Blocker, error) {
	related, err := e.records.RelatedRecords(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("load related records: %w", err)
	}
	return Blockers(related), nil
}
