package db

import (
	"context"
	"testing"
)

func TestTxFromContextEmpty(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Fatalf("expected nil tx on empty context, got %v", tx)
	}
}
