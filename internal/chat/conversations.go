package chat

import (
	"time"

	"d23/internal/types"
)

// ConversationList holds the ordered conversations and the current
// selection. Not safe for concurrent use; Session serializes access.
type ConversationList struct {
	items     []types.Conversation
	currentID string
}

func (l *ConversationList) Items() []types.Conversation {
	out := make([]types.Conversation, len(l.items))
	copy(out, l.items)
	return out
}

func (l *ConversationList) Len() int {
	return len(l.items)
}

func (l *ConversationList) CurrentID() string {
	return l.currentID
}

func (l *ConversationList) SetCurrent(id string) {
	l.currentID = id
}

func (l *ConversationList) Get(id string) (types.Conversation, bool) {
	for _, item := range l.items {
		if item.ID == id {
			return item, true
		}
	}
	return types.Conversation{}, false
}

// Replace swaps in a freshly fetched list and reconciles the selection: a
// current id missing from the new list falls back to the first entry, or to
// none when the list is empty. Returns the current id afterwards.
func (l *ConversationList) Replace(items []types.Conversation) string {
	l.items = append([]types.Conversation(nil), items...)
	if l.currentID != "" && l.contains(l.currentID) {
		return l.currentID
	}
	if len(l.items) > 0 {
		l.currentID = l.items[0].ID
	} else {
		l.currentID = ""
	}
	return l.currentID
}

// SetItems swaps the list without touching the selection. Anonymous listings
// are synthesized around the current session, which is legitimately absent
// from them while the timeline is empty.
func (l *ConversationList) SetItems(items []types.Conversation) {
	l.items = append([]types.Conversation(nil), items...)
}

// Remove drops id from the list. When id was current the selection advances
// to the entry now occupying its position, or the last entry, or none.
// Returns the current id afterwards.
func (l *ConversationList) Remove(id string) string {
	idx := -1
	for i, item := range l.items {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return l.currentID
	}
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	if l.currentID != id {
		return l.currentID
	}
	if len(l.items) == 0 {
		l.currentID = ""
		return ""
	}
	if idx >= len(l.items) {
		idx = len(l.items) - 1
	}
	l.currentID = l.items[idx].ID
	return l.currentID
}

func (l *ConversationList) SetTitle(id, title string) {
	for i := range l.items {
		if l.items[i].ID == id {
			l.items[i].Title = title
			return
		}
	}
}

// RecordExchange bumps a conversation's metadata after a successful send:
// one user message plus one assistant reply.
func (l *ConversationList) RecordExchange(id string, at time.Time) {
	for i := range l.items {
		if l.items[i].ID == id {
			l.items[i].MessageCount += 2
			l.items[i].LastMessageAt = at
			return
		}
	}
}

func (l *ConversationList) contains(id string) bool {
	for _, item := range l.items {
		if item.ID == id {
			return true
		}
	}
	return false
}

// synthesizeAnonymous builds the anonymous listing: the live session when it
// has at least one message, then past sessions from the ring. The current id
// is excluded from the ring portion so it never appears twice.
func synthesizeAnonymous(current *types.Conversation, past []types.PastSession) []types.Conversation {
	out := make([]types.Conversation, 0, len(past)+1)
	currentID := ""
	if current != nil {
		currentID = current.ID
		out = append(out, *current)
	}
	for _, session := range past {
		if session.SessionID == currentID {
			continue
		}
		out = append(out, types.Conversation{
			ID:            session.SessionID,
			Title:         session.Title,
			MessageCount:  session.MessageCount,
			LastMessageAt: session.LastActiveAt,
		})
	}
	return out
}
