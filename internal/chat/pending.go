package chat

import (
	"errors"

	"d23/internal/types"
)

// ErrSendInFlight is returned when a send is requested for a conversation
// that already has one outstanding.
var ErrSendInFlight = errors.New("a send is already in flight for this conversation")

// SendGate enforces at most one outstanding send per conversation. Begin
// must be consulted before an optimistic message is constructed. Not safe
// for concurrent use on its own; Session serializes access.
type SendGate struct {
	inFlight map[string]bool
}

// Begin reports whether a send may start for the conversation, claiming the
// slot when it may.
func (g *SendGate) Begin(conversationID string) bool {
	if g.inFlight == nil {
		g.inFlight = make(map[string]bool)
	}
	if g.inFlight[conversationID] {
		return false
	}
	g.inFlight[conversationID] = true
	return true
}

// Finish releases the slot, on success and on error alike.
func (g *SendGate) Finish(conversationID string) {
	delete(g.inFlight, conversationID)
}

func (g *SendGate) Sending(conversationID string) bool {
	return g.inFlight[conversationID]
}

// LocationGate remembers the user message a requires-location response
// interrupted, so it can be re-sent with coordinates or dropped on denial.
type LocationGate struct {
	pending *types.Message
}

func (g *LocationGate) Set(message types.Message) {
	held := message
	g.pending = &held
}

// Take removes and returns the remembered message.
func (g *LocationGate) Take() (types.Message, bool) {
	if g.pending == nil {
		return types.Message{}, false
	}
	message := *g.pending
	g.pending = nil
	return message, true
}

func (g *LocationGate) Clear() {
	g.pending = nil
}

func (g *LocationGate) Waiting() bool {
	return g.pending != nil
}
