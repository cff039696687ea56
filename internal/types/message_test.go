package types

import (
	"testing"
	"time"
)

func TestErrorMessageShape(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msg := ErrorMessage("conv-1", "backend unreachable", at)
	if msg.Role != RoleAssistant {
		t.Fatalf("unexpected role: %q", msg.Role)
	}
	if msg.Content != "Error: backend unreachable" {
		t.Fatalf("unexpected content: %q", msg.Content)
	}
	if !msg.IsError() {
		t.Fatalf("expected error intent")
	}
	if msg.ConversationID != "conv-1" || !msg.CreatedAt.Equal(at) {
		t.Fatalf("unexpected metadata: %#v", msg)
	}
}
