package client

import (
	"time"

	"d23/internal/types"
)

// HistoryPage selects a slice of history: messages strictly older than
// Before (a message id), at most Limit entries. Zero values mean "latest
// page, server default size".
type HistoryPage struct {
	Before string
	Limit  int
}

// SendChatRequest is the authenticated send. An empty ConversationID asks
// the backend to start a new conversation and return its id.
type SendChatRequest struct {
	ConversationID string   `json:"conversation_id,omitempty"`
	Message        string   `json:"message"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
}

// SendWebChatRequest is the anonymous send, keyed by the web session id.
type SendWebChatRequest struct {
	SessionID string   `json:"session_id"`
	Message   string   `json:"message"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// SendImageRequest sends an image plus caption. SessionID set means the
// anonymous variant; otherwise the call is authenticated and targets
// ConversationID (empty starts a new conversation).
type SendImageRequest struct {
	SessionID      string
	ConversationID string
	Message        string
	Filename       string
	MIME           string
	Data           []byte
}

// SendResult is the normalized outcome of any send variant.
type SendResult struct {
	ConversationID   string
	Assistant        types.Message
	RequiresLocation bool
}

type mintSessionResponse struct {
	SessionID string `json:"session_id"`
}

type conversationsResponse struct {
	Conversations []types.Conversation `json:"conversations"`
}

type historyResponse struct {
	Messages []wireMessage `json:"messages"`
}

type sendChatResponse struct {
	ConversationID   string       `json:"conversation_id"`
	AssistantMessage *wireMessage `json:"assistant_message"`
	RequiresLocation bool         `json:"requires_location"`
}

type sendWebChatResponse struct {
	AssistantMessage *wireMessage `json:"assistant_message"`
	Response         string       `json:"response"`
	RequiresLocation bool         `json:"requires_location"`
}

type transcribeResponse struct {
	Text string `json:"text"`
}

type renameConversationRequest struct {
	Title string `json:"title"`
}

type wireMessage struct {
	ID             string         `json:"id"`
	Role           string         `json:"role"`
	Content        string         `json:"content"`
	Timestamp      time.Time      `json:"timestamp"`
	MediaURL       string         `json:"media_url,omitempty"`
	Intent         string         `json:"intent,omitempty"`
	StructuredData map[string]any `json:"structured_data,omitempty"`
}

func (m wireMessage) message(conversationID string) types.Message {
	role := types.Role(m.Role)
	if role == "" {
		role = types.RoleAssistant
	}
	return types.Message{
		ID:             m.ID,
		ConversationID: conversationID,
		Role:           role,
		Content:        m.Content,
		CreatedAt:      m.Timestamp,
		MediaURL:       m.MediaURL,
		Intent:         m.Intent,
		StructuredData: m.StructuredData,
	}
}

func messagesFromWire(conversationID string, wire []wireMessage) []types.Message {
	out := make([]types.Message, 0, len(wire))
	for _, m := range wire {
		out = append(out, m.message(conversationID))
	}
	return out
}
