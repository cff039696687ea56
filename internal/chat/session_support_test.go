package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"d23/internal/client"
	"d23/internal/store"
	"d23/internal/types"
)

type fakeTransport struct {
	mu sync.Mutex

	mintErr   error
	mintCalls int

	validateErr   error
	validateCalls []string

	conversations    []types.Conversation
	conversationsErr error

	history      map[string][]types.Message
	historyCalls []string

	anonHistory    map[string][]types.Message
	anonHistoryErr error
	anonOlder      []types.Message
	anonCalls      []string
	anonPages      []client.HistoryPage

	newConversationID string
	sendErr           error
	sendCalls         []client.SendChatRequest

	webQueue []*client.SendResult
	webErr   error
	webCalls []client.SendWebChatRequest

	imageCalls []client.SendImageRequest

	transcribed     string
	transcribeCalls int

	renameCalls []string
	deleteCalls []string

	replies int

	// started receives once per send reaching the transport; release, when
	// set, blocks sends until closed.
	started chan struct{}
	release chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		history:     map[string][]types.Message{},
		anonHistory: map[string][]types.Message{},
	}
}

func (f *fakeTransport) MintSession(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mintCalls++
	if f.mintErr != nil {
		return "", f.mintErr
	}
	return fmt.Sprintf("anon-%d", f.mintCalls), nil
}

func (f *fakeTransport) ValidateSession(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validateCalls = append(f.validateCalls, sessionID)
	return f.validateErr
}

func (f *fakeTransport) Conversations(ctx context.Context) ([]types.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conversationsErr != nil {
		return nil, f.conversationsErr
	}
	return append([]types.Conversation(nil), f.conversations...), nil
}

func (f *fakeTransport) ConversationHistory(ctx context.Context, conversationID string, page client.HistoryPage) ([]types.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls = append(f.historyCalls, conversationID)
	return append([]types.Message(nil), f.history[conversationID]...), nil
}

func (f *fakeTransport) AnonymousHistory(ctx context.Context, sessionID string, page client.HistoryPage) ([]types.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.anonCalls = append(f.anonCalls, sessionID)
	f.anonPages = append(f.anonPages, page)
	if f.anonHistoryErr != nil {
		return nil, f.anonHistoryErr
	}
	if page.Before != "" && f.anonOlder != nil {
		return append([]types.Message(nil), f.anonOlder...), nil
	}
	return append([]types.Message(nil), f.anonHistory[sessionID]...), nil
}

func (f *fakeTransport) SendChat(ctx context.Context, req client.SendChatRequest) (*client.SendResult, error) {
	f.mu.Lock()
	f.sendCalls = append(f.sendCalls, req)
	err := f.sendErr
	var result *client.SendResult
	if err == nil {
		conversationID := req.ConversationID
		if conversationID == "" {
			conversationID = f.newConversationID
			if conversationID == "" {
				conversationID = "conv-new"
			}
		}
		result = f.replyLocked(conversationID, req.Message)
	}
	f.mu.Unlock()
	f.signalAndWait()
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (f *fakeTransport) SendWebChat(ctx context.Context, req client.SendWebChatRequest) (*client.SendResult, error) {
	f.mu.Lock()
	f.webCalls = append(f.webCalls, req)
	err := f.webErr
	var result *client.SendResult
	if err == nil {
		if len(f.webQueue) > 0 {
			result = f.webQueue[0]
			f.webQueue = f.webQueue[1:]
		} else {
			result = f.replyLocked(req.SessionID, req.Message)
		}
	}
	f.mu.Unlock()
	f.signalAndWait()
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (f *fakeTransport) SendImage(ctx context.Context, req client.SendImageRequest) (*client.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageCalls = append(f.imageCalls, req)
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = req.SessionID
	}
	return f.replyLocked(conversationID, req.Message), nil
}

func (f *fakeTransport) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transcribeCalls++
	return f.transcribed, nil
}

func (f *fakeTransport) RenameConversation(ctx context.Context, conversationID, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renameCalls = append(f.renameCalls, conversationID+"="+title)
	return nil
}

func (f *fakeTransport) DeleteConversation(ctx context.Context, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, conversationID)
	return nil
}

func (f *fakeTransport) replyLocked(conversationID, content string) *client.SendResult {
	f.replies++
	return &client.SendResult{
		ConversationID: conversationID,
		Assistant: types.Message{
			ID:             fmt.Sprintf("srv-%d", f.replies),
			ConversationID: conversationID,
			Role:           types.RoleAssistant,
			Content:        "re: " + content,
		},
	}
}

func (f *fakeTransport) signalAndWait() {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
}

func (f *fakeTransport) webCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.webCalls)
}

type fakeRepository struct {
	state        *memClientStateStore
	pastSessions *memPastSessionStore
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		state:        &memClientStateStore{},
		pastSessions: &memPastSessionStore{},
	}
}

func (r *fakeRepository) ClientState() store.ClientStateStore {
	return r.state
}

func (r *fakeRepository) PastSessions() store.PastSessionStore {
	return r.pastSessions
}

func (r *fakeRepository) Backend() string {
	return "memory"
}

func (r *fakeRepository) Close() error {
	return nil
}

type memClientStateStore struct {
	mu      sync.Mutex
	state   types.ClientState
	saves   int
	loadErr error
}

func (s *memClientStateStore) Load(ctx context.Context) (*types.ClientState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	state := s.state
	return &state, nil
}

func (s *memClientStateStore) Save(ctx context.Context, state *types.ClientState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = *state
	s.saves++
	return nil
}

func (s *memClientStateStore) current() types.ClientState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

type memPastSessionStore struct {
	mu       sync.Mutex
	sessions []*types.PastSession
	saves    int
}

func (s *memPastSessionStore) List(ctx context.Context) ([]*types.PastSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.PastSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		copy := *session
		out = append(out, &copy)
	}
	return out, nil
}

func (s *memPastSessionStore) Save(ctx context.Context, sessions []*types.PastSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make([]*types.PastSession, 0, len(sessions))
	for _, session := range sessions {
		copy := *session
		s.sessions = append(s.sessions, &copy)
	}
	s.saves++
	return nil
}

func (s *memPastSessionStore) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session.SessionID)
	}
	return out
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestSession(t *testing.T, transport Transport, repo store.Repository, token string, clock *fakeClock) *Session {
	t.Helper()
	if clock == nil {
		clock = newFakeClock()
	}
	ids := 0
	session, err := NewSession(Options{
		Transport:  transport,
		Repository: repo,
		Token:      token,
		Clock:      clock.Now,
		NewID: func() string {
			ids++
			return fmt.Sprintf("m-%d", ids)
		},
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return session
}

func userMessage(id, conversationID, content string) types.Message {
	return types.Message{ID: id, ConversationID: conversationID, Role: types.RoleUser, Content: content}
}

func assistantMessage(id, conversationID, content string) types.Message {
	return types.Message{ID: id, ConversationID: conversationID, Role: types.RoleAssistant, Content: content}
}
