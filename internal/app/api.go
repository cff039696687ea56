package app

import (
	"context"

	"d23/internal/chat"
	"d23/internal/types"
)

type IdentityAPI interface {
	ResolveActor(ctx context.Context) (types.Actor, error)
}

type ConversationAPI interface {
	RefreshConversations(ctx context.Context) error
	SelectConversation(ctx context.Context, id string) error
	StartNewChat(ctx context.Context) error
	Rename(ctx context.Context, id, title string) error
	Delete(ctx context.Context, id string) error
}

type TimelineAPI interface {
	LoadInitialHistory(ctx context.Context) error
	LoadOlderPage(ctx context.Context) error
	Send(ctx context.Context, text string) error
	Regenerate(ctx context.Context) error
	GrantLocation(ctx context.Context, latitude, longitude float64) error
	DenyLocation()
}

type AttachmentAPI interface {
	SelectImage(name, mime string, data []byte) error
	ClearAttachment()
	BeginRecording()
	AttachAudio(ctx context.Context, name, mime string, data []byte) (string, error)
}

// ChatAPI is everything the terminal UI drives on the session reducer. The
// UI never mutates chat state directly: it issues calls and re-reads the
// snapshot on the next tick.
type ChatAPI interface {
	IdentityAPI
	ConversationAPI
	TimelineAPI
	AttachmentAPI
	SetSidebarCollapsed(ctx context.Context, collapsed bool)
	Snapshot() chat.Snapshot
}

var _ ChatAPI = (*chat.Session)(nil)
