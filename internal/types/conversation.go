package types

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

type Conversation struct {
	ID            string    `json:"id"`
	Title         string    `json:"title,omitempty"`
	MessageCount  int       `json:"message_count,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	LastMessageAt time.Time `json:"last_message_at,omitempty"`
}

const (
	titleMaxCells = 40

	// DefaultTitle labels conversations that have no message to derive
	// a title from yet.
	DefaultTitle = "New chat"
)

// DeriveTitle builds a conversation title from the first user message:
// whitespace collapsed to single spaces, then cut at 40 terminal cells
// with a trailing ellipsis. Width-aware so wide runes are never split.
func DeriveTitle(content string) string {
	collapsed := strings.Join(strings.Fields(content), " ")
	if collapsed == "" {
		return DefaultTitle
	}
	if runewidth.StringWidth(collapsed) <= titleMaxCells {
		return collapsed
	}
	return runewidth.Truncate(collapsed, titleMaxCells, "") + "…"
}
