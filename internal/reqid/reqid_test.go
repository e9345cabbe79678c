package reqid

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx, id := NewContext(context.Background())
	got, ok := FromContext(ctx)
	if !ok || got != id {
		t.Fatalf("expected %d from context, got %d ok=%v", id, got, ok)
	}
	if _, ok := FromContext(context.Background()); ok {
		t.Fatalf("unexpected id in empty context")
	}
}

func TestNestedContextKeepsInnermostID(t *testing.T) {
	outer, _ := NewContext(context.Background())
	inner, innerID := NewContext(outer)
	got, ok := FromContext(inner)
	if !ok || got != innerID {
		t.Fatalf("expected inner id %d, got %d ok=%v", innerID, got, ok)
	}
}
