package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"d23/internal/client"
	"d23/internal/logging"
	"d23/internal/store"
	"d23/internal/types"
)

var (
	ErrEmptyMessage      = errors.New("message text is required")
	ErrNoConversation    = errors.New("no conversation selected")
	ErrAuthRequired      = errors.New("this operation requires a signed-in user")
	ErrNoPendingLocation = errors.New("no message is waiting on location")
)

const defaultPageSize = 50

// Options configures a Session. Transport and Repository are required; the
// rest default to sensible values.
type Options struct {
	Transport  Transport
	Repository store.Repository
	Logger     logging.Logger
	Token      string
	UserID     string
	PageSize   int
	RingSize   int
	Clock      func() time.Time
	NewID      func() string
}

// Session is the view-state reducer behind every chat surface: it resolves
// the actor, owns the conversation list, timeline, send and location gates,
// the attachment slot and the past-session ring, and drives the transport.
//
// State transitions happen under a short internal lock; transport calls run
// outside it so work on other conversations stays responsive while a send is
// in flight.
type Session struct {
	transport Transport
	repo      store.Repository
	log       logging.Logger
	token     string
	userID    string
	pageSize  int
	ringSize  int
	now       func() time.Time
	newID     func() string

	resolveMu sync.Mutex
	historyMu sync.Mutex

	mu            sync.Mutex
	actor         types.Actor
	resolved      bool
	historyLoaded bool
	state         types.ClientState
	conversations ConversationList
	timeline      Timeline
	ring          *PastSessionRing
	gate          SendGate
	location      LocationGate
	attachment    types.Attachment
}

func NewSession(opts Options) (*Session, error) {
	if opts.Transport == nil {
		return nil, errors.New("transport is required")
	}
	if opts.Repository == nil {
		return nil, errors.New("repository is required")
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	ringSize := opts.RingSize
	if ringSize <= 0 {
		ringSize = DefaultRingCapacity
	}
	return &Session{
		transport: opts.Transport,
		repo:      opts.Repository,
		log:       log,
		token:     strings.TrimSpace(opts.Token),
		userID:    strings.TrimSpace(opts.UserID),
		pageSize:  pageSize,
		ringSize:  ringSize,
		now:       now,
		newID:     newID,
		ring:      NewPastSessionRing(ringSize, nil),
	}, nil
}

// ResolveActor decides who is chatting, at most once per Session lifetime.
// A bearer token wins outright and no anonymous session is created or
// validated. Otherwise the stored anonymous id is validated and reused;
// absence or any validation failure falls through to minting a fresh
// session, so the caller always ends up with a working identity.
func (s *Session) ResolveActor(ctx context.Context) (types.Actor, error) {
	s.resolveMu.Lock()
	defer s.resolveMu.Unlock()

	s.mu.Lock()
	if s.resolved {
		actor := s.actor
		s.mu.Unlock()
		return actor, nil
	}
	s.mu.Unlock()

	state, err := s.repo.ClientState().Load(ctx)
	if err != nil {
		s.log.Warn("load client state", logging.F("error", err))
		state = nil
	}
	if state == nil {
		state = &types.ClientState{}
	}

	if s.token != "" {
		actor := types.AuthenticatedActor(s.userID, s.token)
		s.mu.Lock()
		s.actor = actor
		s.resolved = true
		s.state = *state
		s.conversations.SetCurrent(strings.TrimSpace(state.ActiveConversationID))
		s.mu.Unlock()
		return actor, nil
	}

	ring, err := s.loadRing(ctx)
	if err != nil {
		s.log.Warn("load past sessions", logging.F("error", err))
		ring = nil
	}

	sessionID := strings.TrimSpace(state.AnonymousSessionID)
	if sessionID != "" {
		if err := s.transport.ValidateSession(ctx, sessionID); err != nil {
			s.log.Debug("anonymous session invalid",
				logging.F("session_id", sessionID),
				logging.F("error", err))
			sessionID = ""
		}
	}
	if sessionID == "" {
		minted, err := s.transport.MintSession(ctx)
		if err != nil {
			return types.Actor{}, err
		}
		sessionID = minted
		state.AnonymousSessionID = sessionID
		// A crash between minting and persisting just means minting again
		// next launch.
		if err := s.repo.ClientState().Save(ctx, state); err != nil {
			s.log.Warn("persist session id", logging.F("error", err))
		}
	}

	actor := types.AnonymousActor(sessionID)
	s.mu.Lock()
	s.actor = actor
	s.resolved = true
	s.state = *state
	if ring != nil {
		s.ring = ring
	}
	s.conversations.SetCurrent(sessionID)
	s.timeline.Reset(sessionID, nil)
	s.mu.Unlock()
	return actor, nil
}

func (s *Session) loadRing(ctx context.Context) (*PastSessionRing, error) {
	stored, err := s.repo.PastSessions().List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]types.PastSession, 0, len(stored))
	for _, session := range stored {
		if session == nil {
			continue
		}
		items = append(items, *session)
	}
	return NewPastSessionRing(s.ringSize, items), nil
}

// LoadInitialHistory fetches the active anonymous session's transcript into
// the timeline. The fetch runs at most once per Session lifetime; repeat
// calls are no-ops even after a failed fetch, which leaves an empty timeline
// behind a still-usable session. Authenticated actors load through
// RefreshConversations instead.
func (s *Session) LoadInitialHistory(ctx context.Context) error {
	actor, err := s.ResolveActor(ctx)
	if err != nil {
		return err
	}

	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.mu.Lock()
	if s.historyLoaded {
		s.mu.Unlock()
		return nil
	}
	s.historyLoaded = true
	s.mu.Unlock()

	if actor.Authenticated() {
		return nil
	}
	messages, err := s.transport.AnonymousHistory(ctx, actor.SessionID, client.HistoryPage{Limit: s.pageSize})
	if err != nil {
		s.log.Warn("load anonymous history",
			logging.F("session_id", actor.SessionID),
			logging.F("error", err))
		return err
	}
	s.mu.Lock()
	if s.actor.SessionID == actor.SessionID {
		s.timeline.Reset(actor.SessionID, messages)
	}
	s.mu.Unlock()
	return nil
}

// RefreshConversations reloads the conversation list. Authenticated actors
// get the server list with the selection reconciled against it; anonymous
// actors get a listing synthesized from the live session and the
// past-session ring.
func (s *Session) RefreshConversations(ctx context.Context) error {
	actor, err := s.ResolveActor(ctx)
	if err != nil {
		return err
	}

	if !actor.Authenticated() {
		s.mu.Lock()
		s.conversations.SetItems(synthesizeAnonymous(s.liveConversationLocked(), s.ring.Items()))
		s.mu.Unlock()
		return nil
	}

	list, err := s.transport.Conversations(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	previous := s.conversations.CurrentID()
	current := s.conversations.Replace(list)
	needHistory := current != "" && s.timeline.ConversationID() != current
	if s.timeline.ConversationID() != current {
		s.timeline.Reset(current, nil)
	}
	s.mu.Unlock()

	if current != previous {
		s.persistActiveConversation(ctx, current)
	}
	if needHistory {
		return s.reloadCurrentHistory(ctx, current)
	}
	return nil
}

// SelectConversation makes id current. Authenticated selection switches and
// refetches that conversation's history. Anonymous selection adopts a past
// session as the active one, snapshotting the session it replaces into the
// ring; selecting the current session is a no-op.
func (s *Session) SelectConversation(ctx context.Context, id string) error {
	actor, err := s.ResolveActor(ctx)
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNoConversation
	}

	s.mu.Lock()
	if id == s.conversations.CurrentID() {
		s.mu.Unlock()
		return nil
	}
	if actor.Authenticated() {
		s.conversations.SetCurrent(id)
		s.timeline.Reset(id, nil)
		s.mu.Unlock()
		s.persistActiveConversation(ctx, id)
		return s.reloadCurrentHistory(ctx, id)
	}
	if snapshot := s.snapshotLiveLocked(); snapshot != nil {
		s.ring.Touch(*snapshot)
	}
	s.mu.Unlock()

	messages, err := s.transport.AnonymousHistory(ctx, id, client.HistoryPage{Limit: s.pageSize})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.actor = types.AnonymousActor(id)
	s.state.AnonymousSessionID = id
	s.conversations.SetCurrent(id)
	s.timeline.Reset(id, messages)
	s.location.Clear()
	state := s.state
	ring := s.ring.Items()
	s.mu.Unlock()

	s.persistState(ctx, state)
	s.persistRing(ctx, ring)
	return nil
}

// Send submits text, plus any staged image, for the current conversation.
// The send gate is checked before the optimistic message is constructed; a
// second send while one is outstanding returns ErrSendInFlight and changes
// nothing.
func (s *Session) Send(ctx context.Context, text string) error {
	actor, err := s.ResolveActor(ctx)
	if err != nil {
		return err
	}
	trimmed := strings.TrimSpace(text)

	s.mu.Lock()
	attachment := s.attachment
	if trimmed == "" && !attachment.Image() {
		s.mu.Unlock()
		return ErrEmptyMessage
	}
	conversationID := s.conversations.CurrentID()
	key := s.sendKeyLocked(conversationID)
	if !s.gate.Begin(key) {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	user := types.Message{
		ID:             s.newID(),
		ConversationID: conversationID,
		Role:           types.RoleUser,
		Content:        trimmed,
		CreatedAt:      s.now(),
		Pending:        true,
	}
	if attachment.Image() {
		user.MediaURL = attachment.Preview
		s.attachment = types.NoAttachment()
	}
	s.timeline.AppendOptimistic(user)
	s.mu.Unlock()

	result, err := s.dispatchSend(ctx, actor, conversationID, trimmed, attachment, nil, nil)
	return s.completeSend(ctx, key, user, result, err)
}

// GrantLocation re-sends the message a location prompt interrupted, with
// coordinates attached. The original user message stays where it is; no new
// optimistic entry is created.
func (s *Session) GrantLocation(ctx context.Context, latitude, longitude float64) error {
	actor, err := s.ResolveActor(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	pending, ok := s.location.Take()
	if !ok {
		s.mu.Unlock()
		return ErrNoPendingLocation
	}
	conversationID := s.conversations.CurrentID()
	key := s.sendKeyLocked(conversationID)
	if !s.gate.Begin(key) {
		s.location.Set(pending)
		s.mu.Unlock()
		return ErrSendInFlight
	}
	s.mu.Unlock()

	result, err := s.dispatchSend(ctx, actor, conversationID, pending.Content, types.NoAttachment(), &latitude, &longitude)
	return s.completeSend(ctx, key, pending, result, err)
}

// DenyLocation drops the remembered message without resubmission.
func (s *Session) DenyLocation() {
	s.mu.Lock()
	s.location.Clear()
	s.mu.Unlock()
}

// Regenerate removes the newest assistant reply and re-sends the newest user
// message as-is. A timeline without a user message makes this a no-op.
func (s *Session) Regenerate(ctx context.Context) error {
	actor, err := s.ResolveActor(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	conversationID := s.conversations.CurrentID()
	key := s.sendKeyLocked(conversationID)
	if !s.gate.Begin(key) {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	user, ok := s.timeline.RegenerateLast()
	if !ok {
		s.gate.Finish(key)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	result, err := s.dispatchSend(ctx, actor, conversationID, user.Content, types.NoAttachment(), nil, nil)
	return s.completeSend(ctx, key, user, result, err)
}

// LoadOlderPage prepends the next page of history. Rapid re-triggers are
// absorbed: nothing fires while a page load is outstanding or within the
// cool-down window after the previous trigger.
func (s *Session) LoadOlderPage(ctx context.Context) error {
	actor, err := s.ResolveActor(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	conversationID := s.timeline.ConversationID()
	if conversationID == "" {
		s.mu.Unlock()
		return nil
	}
	if !s.timeline.BeginOlderLoad(s.now()) {
		s.mu.Unlock()
		return nil
	}
	page := client.HistoryPage{Before: s.timeline.OldestID(), Limit: s.pageSize}
	s.mu.Unlock()

	var older []types.Message
	if actor.Authenticated() {
		older, err = s.transport.ConversationHistory(ctx, conversationID, page)
	} else {
		older, err = s.transport.AnonymousHistory(ctx, conversationID, page)
	}

	s.mu.Lock()
	if s.timeline.ConversationID() == conversationID {
		if err != nil {
			s.timeline.FinishOlderLoad(nil)
		} else {
			s.timeline.FinishOlderLoad(older)
		}
	}
	s.mu.Unlock()
	return err
}

// StartNewChat clears the way for a fresh conversation. Anonymous actors
// snapshot the live session into the past-session ring and mint a new
// session id; authenticated actors drop the selection so the next send
// creates a conversation server-side.
func (s *Session) StartNewChat(ctx context.Context) error {
	actor, err := s.ResolveActor(ctx)
	if err != nil {
		return err
	}

	if actor.Authenticated() {
		s.mu.Lock()
		s.conversations.SetCurrent("")
		s.timeline.Reset("", nil)
		s.location.Clear()
		s.attachment = types.NoAttachment()
		s.mu.Unlock()
		s.persistActiveConversation(ctx, "")
		return nil
	}

	s.mu.Lock()
	if snapshot := s.snapshotLiveLocked(); snapshot != nil {
		s.ring.Touch(*snapshot)
	}
	ring := s.ring.Items()
	s.mu.Unlock()
	s.persistRing(ctx, ring)

	minted, err := s.transport.MintSession(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.actor = types.AnonymousActor(minted)
	s.state.AnonymousSessionID = minted
	s.conversations.SetCurrent(minted)
	s.timeline.Reset(minted, nil)
	s.location.Clear()
	s.attachment = types.NoAttachment()
	state := s.state
	s.mu.Unlock()
	s.persistState(ctx, state)
	return nil
}

// SelectImage validates and stages an image for the next send. Rejection
// leaves the current attachment untouched.
func (s *Session) SelectImage(name, mime string, data []byte) error {
	attachment, err := types.NewImageAttachment(name, mime, data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.attachment = attachment
	s.mu.Unlock()
	return nil
}

func (s *Session) ClearAttachment() {
	s.mu.Lock()
	s.attachment = types.NoAttachment()
	s.mu.Unlock()
}

// BeginRecording stages the recording state, discarding any staged image.
func (s *Session) BeginRecording() {
	s.mu.Lock()
	s.attachment = types.RecordingAttachment()
	s.mu.Unlock()
}

// AttachAudio submits a captured voice note for transcription and returns
// the text for the caller to place in the input. The attachment slot passes
// through Transcribing and always ends at None.
func (s *Session) AttachAudio(ctx context.Context, name, mime string, data []byte) (string, error) {
	if len(data) == 0 {
		s.ClearAttachment()
		return "", errors.New("audio data is required")
	}
	s.mu.Lock()
	s.attachment = types.TranscribingAttachment(name, mime, data)
	s.mu.Unlock()

	text, err := s.transport.Transcribe(ctx, name, data)

	s.ClearAttachment()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Rename updates a conversation title server-side and in the local list.
func (s *Session) Rename(ctx context.Context, id, title string) error {
	actor, err := s.ResolveActor(ctx)
	if err != nil {
		return err
	}
	if !actor.Authenticated() {
		return ErrAuthRequired
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("title is required")
	}
	if err := s.transport.RenameConversation(ctx, id, title); err != nil {
		return err
	}
	s.mu.Lock()
	s.conversations.SetTitle(id, title)
	s.mu.Unlock()
	return nil
}

// Delete removes a conversation. Deleting the current one clears the
// timeline and advances the selection to the next available conversation,
// whose history is then loaded.
func (s *Session) Delete(ctx context.Context, id string) error {
	actor, err := s.ResolveActor(ctx)
	if err != nil {
		return err
	}
	if !actor.Authenticated() {
		return ErrAuthRequired
	}
	if err := s.transport.DeleteConversation(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	wasCurrent := s.conversations.CurrentID() == id
	current := s.conversations.Remove(id)
	if wasCurrent {
		s.timeline.Reset(current, nil)
	}
	s.mu.Unlock()

	if !wasCurrent {
		return nil
	}
	s.persistActiveConversation(ctx, current)
	if current == "" {
		return nil
	}
	return s.reloadCurrentHistory(ctx, current)
}

// SetSidebarCollapsed persists the sidebar preference.
func (s *Session) SetSidebarCollapsed(ctx context.Context, collapsed bool) {
	s.mu.Lock()
	s.state.SidebarCollapsed = collapsed
	state := s.state
	s.mu.Unlock()
	s.persistState(ctx, state)
}

// Snapshot is a copy of the view state for renderers.
type Snapshot struct {
	Actor            types.Actor
	Conversations    []types.Conversation
	CurrentID        string
	Messages         []types.Message
	Sending          bool
	Attachment       types.Attachment
	AwaitingLocation bool
	SidebarCollapsed bool
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.conversations.CurrentID()
	return Snapshot{
		Actor:            s.actor,
		Conversations:    s.conversations.Items(),
		CurrentID:        current,
		Messages:         s.timeline.Messages(),
		Sending:          s.gate.Sending(s.sendKeyLocked(current)),
		Attachment:       s.attachment,
		AwaitingLocation: s.location.Waiting(),
		SidebarCollapsed: s.state.SidebarCollapsed,
	}
}

func (s *Session) dispatchSend(ctx context.Context, actor types.Actor, conversationID, text string, attachment types.Attachment, lat, lon *float64) (*client.SendResult, error) {
	if attachment.Image() {
		req := client.SendImageRequest{
			Message:  text,
			Filename: attachment.Name,
			MIME:     attachment.MIME,
			Data:     attachment.Data,
		}
		if actor.Authenticated() {
			req.ConversationID = conversationID
		} else {
			req.SessionID = actor.SessionID
		}
		return s.transport.SendImage(ctx, req)
	}
	if actor.Authenticated() {
		return s.transport.SendChat(ctx, client.SendChatRequest{
			ConversationID: conversationID,
			Message:        text,
			Latitude:       lat,
			Longitude:      lon,
		})
	}
	return s.transport.SendWebChat(ctx, client.SendWebChatRequest{
		SessionID: actor.SessionID,
		Message:   text,
		Latitude:  lat,
		Longitude: lon,
	})
}

// completeSend finishes a dispatched send: release the gate, then either
// roll the timeline back to an error message or reconcile the assistant
// reply, adopt a server-issued conversation id on a first authenticated
// send, and arm the location gate when the backend asks for coordinates.
// A timeline that moved to another conversation mid-flight is left alone.
func (s *Session) completeSend(ctx context.Context, key string, user types.Message, result *client.SendResult, err error) error {
	s.mu.Lock()
	s.gate.Finish(key)
	sameConversation := s.timeline.ConversationID() == user.ConversationID
	if err != nil {
		if sameConversation {
			s.timeline.RollbackToError(errorReason(err), s.now())
		}
		s.mu.Unlock()
		return err
	}

	adopted := ""
	if sameConversation {
		if result.ConversationID != "" && s.timeline.ConversationID() == "" {
			adopted = result.ConversationID
			s.conversations.SetCurrent(adopted)
			s.timeline.AdoptConversationID(adopted)
		}
		if result.RequiresLocation {
			s.location.Set(user)
		}
		s.timeline.Reconcile(result.Assistant)
	}
	target := strings.TrimSpace(result.ConversationID)
	if target == "" {
		target = user.ConversationID
	}
	s.conversations.RecordExchange(target, s.now())
	s.mu.Unlock()

	if adopted != "" {
		s.persistActiveConversation(ctx, adopted)
	}
	return nil
}

func (s *Session) reloadCurrentHistory(ctx context.Context, conversationID string) error {
	messages, err := s.transport.ConversationHistory(ctx, conversationID, client.HistoryPage{Limit: s.pageSize})
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.conversations.CurrentID() == conversationID {
		s.timeline.Reset(conversationID, messages)
	}
	s.mu.Unlock()
	return nil
}

// liveConversationLocked synthesizes a conversation entry for the active
// anonymous session, or nil while its timeline is empty.
func (s *Session) liveConversationLocked() *types.Conversation {
	if s.timeline.Len() == 0 {
		return nil
	}
	return &types.Conversation{
		ID:            s.actor.SessionID,
		Title:         types.DeriveTitle(s.timeline.FirstUserContent()),
		MessageCount:  s.timeline.Len(),
		LastMessageAt: s.lastActivityLocked(),
	}
}

func (s *Session) snapshotLiveLocked() *types.PastSession {
	if s.timeline.Len() == 0 {
		return nil
	}
	sessionID := strings.TrimSpace(s.actor.SessionID)
	if sessionID == "" {
		return nil
	}
	return &types.PastSession{
		SessionID:    sessionID,
		Title:        types.DeriveTitle(s.timeline.FirstUserContent()),
		MessageCount: s.timeline.Len(),
		LastActiveAt: s.lastActivityLocked(),
	}
}

func (s *Session) lastActivityLocked() time.Time {
	if at := s.timeline.LastMessageTime(); !at.IsZero() {
		return at
	}
	return s.now()
}

func (s *Session) sendKeyLocked(conversationID string) string {
	if conversationID != "" {
		return conversationID
	}
	if !s.actor.Authenticated() {
		return s.actor.SessionID
	}
	return ""
}

func (s *Session) persistActiveConversation(ctx context.Context, id string) {
	s.mu.Lock()
	s.state.ActiveConversationID = id
	state := s.state
	s.mu.Unlock()
	s.persistState(ctx, state)
}

func (s *Session) persistState(ctx context.Context, state types.ClientState) {
	if err := s.repo.ClientState().Save(ctx, &state); err != nil {
		s.log.Warn("persist client state", logging.F("error", err))
	}
}

func (s *Session) persistRing(ctx context.Context, items []types.PastSession) {
	stored := make([]*types.PastSession, 0, len(items))
	for i := range items {
		session := items[i]
		stored = append(stored, &session)
	}
	if err := s.repo.PastSessions().Save(ctx, stored); err != nil {
		s.log.Warn("persist past sessions", logging.F("error", err))
	}
}

// errorReason extracts the user-facing text for a failed send: the decoded
// backend message when present, otherwise the transport error itself.
func errorReason(err error) string {
	if err == nil {
		return ""
	}
	if apiErr := client.AsAPIError(err); apiErr != nil && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return err.Error()
}
