package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"d23/internal/chat"
	"d23/internal/config"
	"d23/internal/logging"
	"d23/internal/types"
)

var testNow = time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC)

type fakeChat struct {
	mu    sync.Mutex
	snap  chat.Snapshot
	calls []string

	resolveErr    error
	historyErr    error
	refreshErr    error
	selectErr     error
	sendErr       error
	grantErr      error
	regenErr      error
	olderErr      error
	newChatErr    error
	renameErr     error
	deleteErr     error
	imageErr      error
	transcription string
	transcribeErr error
}

func (f *fakeChat) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeChat) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeChat) setSnapshot(snap chat.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap
}

func (f *fakeChat) ResolveActor(ctx context.Context) (types.Actor, error) {
	f.record("resolve")
	return f.Snapshot().Actor, f.resolveErr
}

func (f *fakeChat) LoadInitialHistory(ctx context.Context) error {
	f.record("initial-history")
	return f.historyErr
}

func (f *fakeChat) RefreshConversations(ctx context.Context) error {
	f.record("refresh-conversations")
	return f.refreshErr
}

func (f *fakeChat) SelectConversation(ctx context.Context, id string) error {
	f.record("select:%s", id)
	return f.selectErr
}

func (f *fakeChat) Send(ctx context.Context, text string) error {
	f.record("send:%s", text)
	return f.sendErr
}

func (f *fakeChat) GrantLocation(ctx context.Context, latitude, longitude float64) error {
	f.record("grant-location:%.2f,%.2f", latitude, longitude)
	return f.grantErr
}

func (f *fakeChat) DenyLocation() {
	f.record("deny-location")
}

func (f *fakeChat) Regenerate(ctx context.Context) error {
	f.record("regenerate")
	return f.regenErr
}

func (f *fakeChat) LoadOlderPage(ctx context.Context) error {
	f.record("older-page")
	return f.olderErr
}

func (f *fakeChat) StartNewChat(ctx context.Context) error {
	f.record("new-chat")
	return f.newChatErr
}

func (f *fakeChat) SelectImage(name, mime string, data []byte) error {
	f.record("select-image:%s:%s:%d", name, mime, len(data))
	return f.imageErr
}

func (f *fakeChat) ClearAttachment() {
	f.record("clear-attachment")
}

func (f *fakeChat) BeginRecording() {
	f.record("begin-recording")
}

func (f *fakeChat) AttachAudio(ctx context.Context, name, mime string, data []byte) (string, error) {
	f.record("attach-audio:%s:%s:%d", name, mime, len(data))
	return f.transcription, f.transcribeErr
}

func (f *fakeChat) Rename(ctx context.Context, id, title string) error {
	f.record("rename:%s:%s", id, title)
	return f.renameErr
}

func (f *fakeChat) Delete(ctx context.Context, id string) error {
	f.record("delete:%s", id)
	return f.deleteErr
}

func (f *fakeChat) SetSidebarCollapsed(ctx context.Context, collapsed bool) {
	f.record("sidebar-collapsed:%t", collapsed)
}

func (f *fakeChat) Snapshot() chat.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

var _ ChatAPI = (*fakeChat)(nil)

func newTestModel(t *testing.T, fake *fakeChat) *Model {
	t.Helper()
	m := NewModel(fake, config.UIConfig{}, logging.Nop(), WithClock(func() time.Time { return testNow }))
	m.resolved = true
	m.resize(100, 24)
	return m
}

func keyMsg(keyType tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: keyType}
}

func runeMsg(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

func altRuneMsg(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text), Alt: true}
}

func altKeyMsg(keyType tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: keyType, Alt: true}
}

func sampleConversations() []types.Conversation {
	return []types.Conversation{
		{ID: "conv-1", Title: "Grocery list", MessageCount: 4, LastMessageAt: testNow.Add(-2 * time.Minute)},
		{ID: "conv-2", Title: "Trip plans", MessageCount: 7, LastMessageAt: testNow.Add(-1 * time.Hour)},
		{ID: "conv-3", Title: "Workout ideas", MessageCount: 2, LastMessageAt: testNow.Add(-26 * time.Hour)},
	}
}

func manyMessages(conversationID string, pairs int) []types.Message {
	out := make([]types.Message, 0, pairs*2)
	for i := 0; i < pairs; i++ {
		at := testNow.Add(time.Duration(i-pairs) * time.Minute)
		out = append(out, types.Message{
			ID:             fmt.Sprintf("u-%d", i),
			ConversationID: conversationID,
			Role:           types.RoleUser,
			Content:        fmt.Sprintf("question %d", i),
			CreatedAt:      at,
		})
		out = append(out, types.Message{
			ID:             fmt.Sprintf("a-%d", i),
			ConversationID: conversationID,
			Role:           types.RoleAssistant,
			Content:        fmt.Sprintf("answer %d", i),
			CreatedAt:      at.Add(10 * time.Second),
		})
	}
	return out
}

func authenticatedSnapshot() chat.Snapshot {
	return chat.Snapshot{
		Actor:         types.AuthenticatedActor("user-1", "token-1"),
		Conversations: sampleConversations(),
		CurrentID:     "conv-1",
		Messages:      manyMessages("conv-1", 2),
	}
}

func containsCall(calls []string, want string) bool {
	for _, call := range calls {
		if call == want {
			return true
		}
	}
	return false
}
