package chat

import (
	"context"

	"d23/internal/client"
	"d23/internal/types"
)

// Transport is the outbound boundary the session reducer calls through.
// *client.Client satisfies it; tests substitute fakes.
type Transport interface {
	MintSession(ctx context.Context) (string, error)
	ValidateSession(ctx context.Context, sessionID string) error
	Conversations(ctx context.Context) ([]types.Conversation, error)
	ConversationHistory(ctx context.Context, conversationID string, page client.HistoryPage) ([]types.Message, error)
	AnonymousHistory(ctx context.Context, sessionID string, page client.HistoryPage) ([]types.Message, error)
	SendChat(ctx context.Context, req client.SendChatRequest) (*client.SendResult, error)
	SendWebChat(ctx context.Context, req client.SendWebChatRequest) (*client.SendResult, error)
	SendImage(ctx context.Context, req client.SendImageRequest) (*client.SendResult, error)
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
	RenameConversation(ctx context.Context, conversationID, title string) error
	DeleteConversation(ctx context.Context, conversationID string) error
}
