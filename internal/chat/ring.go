package chat

import (
	"strings"

	"d23/internal/types"
)

// DefaultRingCapacity is how many past anonymous sessions are retained.
const DefaultRingCapacity = 10

// PastSessionRing keeps the most recently used past anonymous sessions,
// newest first, evicting the oldest once full. Not safe for concurrent use;
// Session serializes access.
type PastSessionRing struct {
	capacity int
	items    []types.PastSession
}

func NewPastSessionRing(capacity int, items []types.PastSession) *PastSessionRing {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	ring := &PastSessionRing{capacity: capacity, items: make([]types.PastSession, 0, capacity)}
	for _, item := range items {
		if strings.TrimSpace(item.SessionID) == "" || ring.index(item.SessionID) >= 0 {
			continue
		}
		if len(ring.items) == capacity {
			break
		}
		ring.items = append(ring.items, item)
	}
	return ring
}

// Touch moves session to the front, inserting it if absent.
func (r *PastSessionRing) Touch(session types.PastSession) {
	if strings.TrimSpace(session.SessionID) == "" {
		return
	}
	r.Remove(session.SessionID)
	r.items = append([]types.PastSession{session}, r.items...)
	if len(r.items) > r.capacity {
		r.items = r.items[:r.capacity]
	}
}

func (r *PastSessionRing) Remove(sessionID string) {
	if i := r.index(sessionID); i >= 0 {
		r.items = append(r.items[:i], r.items[i+1:]...)
	}
}

// Items returns the ring newest first.
func (r *PastSessionRing) Items() []types.PastSession {
	out := make([]types.PastSession, len(r.items))
	copy(out, r.items)
	return out
}

func (r *PastSessionRing) Len() int {
	return len(r.items)
}

func (r *PastSessionRing) index(sessionID string) int {
	for i, item := range r.items {
		if item.SessionID == sessionID {
			return i
		}
	}
	return -1
}
