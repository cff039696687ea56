package types

import "time"

// PastSession is a snapshot of a previously active anonymous chat, kept so
// the user can return to it after starting a new one.
type PastSession struct {
	SessionID    string    `json:"session_id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count,omitempty"`
	LastActiveAt time.Time `json:"last_active_at"`
}
