package chat

import (
	"time"

	"d23/internal/types"
)

// olderLoadCooldown is the minimum spacing between older-page triggers, so a
// scroll-spammed top edge cannot fire overlapping fetches.
const olderLoadCooldown = time.Second

// Timeline is the ordered message log for the active conversation. Messages
// are append-mostly: optimistic user entries are confirmed in place, never
// reordered. Not safe for concurrent use; Session serializes access.
type Timeline struct {
	conversationID string
	messages       []types.Message
	loadingOlder   bool
	lastOlderLoad  time.Time
}

// Reset repoints the timeline at a conversation, replacing its contents and
// clearing the older-page guard.
func (t *Timeline) Reset(conversationID string, messages []types.Message) {
	t.conversationID = conversationID
	t.messages = append([]types.Message(nil), messages...)
	t.loadingOlder = false
	t.lastOlderLoad = time.Time{}
}

func (t *Timeline) ConversationID() string {
	return t.conversationID
}

// AdoptConversationID rebinds a timeline started without a conversation id
// to the server-issued one after the first successful send.
func (t *Timeline) AdoptConversationID(id string) {
	t.conversationID = id
	for i := range t.messages {
		if t.messages[i].ConversationID == "" {
			t.messages[i].ConversationID = id
		}
	}
}

// Messages returns a copy of the log in render order.
func (t *Timeline) Messages() []types.Message {
	out := make([]types.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Timeline) Len() int {
	return len(t.messages)
}

// OldestID is the pagination cursor for older-history fetches.
func (t *Timeline) OldestID() string {
	if len(t.messages) == 0 {
		return ""
	}
	return t.messages[0].ID
}

// AppendOptimistic inserts the user's message before any network call
// resolves.
func (t *Timeline) AppendOptimistic(message types.Message) {
	t.messages = append(t.messages, message)
}

// Reconcile appends the confirmed assistant reply and clears the pending
// mark on the optimistic message it answers. An empty reply (location prompt
// without text) confirms without appending.
func (t *Timeline) Reconcile(assistant types.Message) {
	t.confirmPending()
	if assistant.Content == "" && assistant.MediaURL == "" {
		return
	}
	t.messages = append(t.messages, assistant)
}

// RollbackToError keeps the optimistic user message in place and appends a
// synthetic assistant message describing the failure.
func (t *Timeline) RollbackToError(reason string, at time.Time) {
	t.confirmPending()
	t.messages = append(t.messages, types.ErrorMessage(t.conversationID, reason, at))
}

func (t *Timeline) confirmPending() {
	for i := range t.messages {
		if t.messages[i].Pending {
			t.messages[i].Pending = false
		}
	}
}

// BeginOlderLoad reports whether an older-page fetch may start now. Triggers
// are refused while a load is outstanding or within the cool-down window
// after the previous one.
func (t *Timeline) BeginOlderLoad(now time.Time) bool {
	if t.loadingOlder {
		return false
	}
	if !t.lastOlderLoad.IsZero() && now.Sub(t.lastOlderLoad) < olderLoadCooldown {
		return false
	}
	t.loadingOlder = true
	t.lastOlderLoad = now
	return true
}

// FinishOlderLoad prepends the fetched page and releases the guard.
func (t *Timeline) FinishOlderLoad(older []types.Message) {
	t.loadingOlder = false
	if len(older) == 0 {
		return
	}
	merged := make([]types.Message, 0, len(older)+len(t.messages))
	merged = append(merged, older...)
	merged = append(merged, t.messages...)
	t.messages = merged
}

// RegenerateLast removes the newest assistant message and returns the newest
// user message so the caller can re-send it. When no user message exists
// nothing is removed and ok is false.
func (t *Timeline) RegenerateLast() (types.Message, bool) {
	var user types.Message
	found := false
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == types.RoleUser {
			user = t.messages[i]
			found = true
			break
		}
	}
	if !found {
		return types.Message{}, false
	}
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == types.RoleAssistant {
			t.messages = append(t.messages[:i], t.messages[i+1:]...)
			break
		}
	}
	return user, true
}

// FirstUserContent is the title source for derived conversation titles: the
// earliest user message, or the first message of any role.
func (t *Timeline) FirstUserContent() string {
	for _, message := range t.messages {
		if message.Role == types.RoleUser {
			return message.Content
		}
	}
	if len(t.messages) > 0 {
		return t.messages[0].Content
	}
	return ""
}

// LastMessageTime is the timestamp of the newest message, or zero when the
// timeline is empty.
func (t *Timeline) LastMessageTime() time.Time {
	if len(t.messages) == 0 {
		return time.Time{}
	}
	return t.messages[len(t.messages)-1].CreatedAt
}
