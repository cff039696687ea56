package types

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IntentError marks synthetic assistant messages that render a failed send.
const IntentError = "error"

type Message struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Role           Role           `json:"role"`
	Content        string         `json:"content"`
	CreatedAt      time.Time      `json:"created_at"`
	MediaURL       string         `json:"media_url,omitempty"`
	Intent         string         `json:"intent,omitempty"`
	StructuredData map[string]any `json:"structured_data,omitempty"`

	// Pending is view state for an optimistic message awaiting the server
	// round trip. Never serialized.
	Pending bool `json:"-"`
}

// ErrorMessage builds the synthetic assistant message appended when a send
// fails. The optimistic user message it answers is left in place.
func ErrorMessage(conversationID, reason string, at time.Time) Message {
	return Message{
		ConversationID: conversationID,
		Role:           RoleAssistant,
		Content:        "Error: " + reason,
		CreatedAt:      at,
		Intent:         IntentError,
	}
}

func (m Message) IsError() bool { return m.Intent == IntentError }
