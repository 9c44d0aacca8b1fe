package workflow

import (
	"fmt"
	"strings"
)

// InvalidEdgeError reports a transition rejected by the state graph. The
// Allowed slice is sorted and may be empty (terminal or unknown source).
type InvalidEdgeError struct {
	From    Status   `json:"from"`
	To      Status   `json:"to"`
	Allowed []Status `json:"allowed"`
}

func (e *InvalidEdgeError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = string(s)
	}
	return fmt.Sprintf("cannot transition from %s to %s (allowed: %s)",
		e.From, e.To, strings.Join(allowed, ", "))
}

// BlockedError reports a transition whose edge exists but whose
// prerequisites are not met. Reasons preserves check order.
type BlockedError struct {
	To      Status   `json:"to"`
	Reasons []string `json:"reasons"`
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("cannot transition to %s: %s", e.To, strings.Join(e.Reasons, "; "))
}
