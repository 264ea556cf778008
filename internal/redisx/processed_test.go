package redisx

import (
	"context"
	"testing"
)

// A nil log must behave like an empty one so callers can run without Redis.
func TestNilProcessedLog(t *testing.T) {
	var l *ProcessedLog

	if l.Seen(context.Background(), "inv-1", "PAID") {
		t.Fatal("nil log must report nothing as seen")
	}
	l.Mark(context.Background(), "inv-1", "PAID") // must not panic

	if got := NewProcessedLog(nil); got != nil {
		t.Fatalf("NewProcessedLog(nil) = %v, want nil", got)
	}
}
