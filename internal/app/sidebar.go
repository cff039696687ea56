package app

import (
	"fmt"
	"strings"
	"time"

	xansi "github.com/charmbracelet/x/ansi"

	"d23/internal/types"
)

// sidebarHeaderRows is the title line plus the blank spacer before the
// first conversation row. ItemAt depends on it.
const sidebarHeaderRows = 2

// Sidebar lists conversations for signed-in users and, for anonymous ones,
// the live session plus the ring of past sessions. Selection state lives in
// the reducer; the sidebar only tracks scroll.
type Sidebar struct {
	width  int
	height int
	offset int
}

func newSidebar() *Sidebar {
	return &Sidebar{}
}

func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func (s *Sidebar) visibleRows() int {
	return max(0, s.height-sidebarHeaderRows)
}

func (s *Sidebar) ScrollBy(delta, total int) {
	maxOffset := max(0, total-s.visibleRows())
	s.offset = clamp(s.offset+delta, 0, maxOffset)
}

// EnsureVisible scrolls just enough to bring index into view.
func (s *Sidebar) EnsureVisible(index, total int) {
	if index < 0 {
		return
	}
	rows := s.visibleRows()
	if rows <= 0 {
		return
	}
	if index < s.offset {
		s.offset = index
	} else if index >= s.offset+rows {
		s.offset = index - rows + 1
	}
	s.offset = clamp(s.offset, 0, max(0, total-rows))
}

// ItemAt maps a row click (y relative to the sidebar top) to a conversation.
func (s *Sidebar) ItemAt(y int, conversations []types.Conversation) (string, bool) {
	index := y - sidebarHeaderRows + s.offset
	if index < 0 || index >= len(conversations) {
		return "", false
	}
	return conversations[index].ID, true
}

func (s *Sidebar) View(conversations []types.Conversation, currentID string, now time.Time) string {
	if s.width <= 0 || s.height <= 0 {
		return ""
	}
	lines := make([]string, 0, s.height)
	title := fmt.Sprintf("Chats (%d)", len(conversations))
	lines = append(lines, sidebarTitleStyle.Render(truncateToWidth(title, s.width)))
	lines = append(lines, "")

	end := min(len(conversations), s.offset+s.visibleRows())
	for _, convo := range conversations[s.offset:end] {
		lines = append(lines, s.renderItem(convo, convo.ID == currentID, now))
	}
	for len(lines) < s.height {
		lines = append(lines, "")
	}
	return padLines(lines[:s.height], s.width)
}

func (s *Sidebar) renderItem(convo types.Conversation, current bool, now time.Time) string {
	title := strings.TrimSpace(convo.Title)
	if title == "" {
		title = types.DefaultTitle
	}
	marker := "  "
	if current {
		marker = "● "
	}
	titleWidth := max(1, s.width-xansi.StringWidth(marker))

	var age string
	if !convo.LastMessageAt.IsZero() {
		age = relativeTimestamp(convo.LastMessageAt, now)
	}
	// The age column only appears when the title keeps a readable width.
	if age != "" && titleWidth-(len(age)+1) >= 8 {
		titleWidth -= len(age) + 1
		title = truncateToWidth(title, titleWidth)
		pad := max(0, titleWidth-xansi.StringWidth(title))
		body := marker + title + strings.Repeat(" ", pad) + " "
		if current {
			return selectedStyle.Render(body) + sidebarMetaStyle.Render(age)
		}
		return conversationStyle.Render(body) + sidebarMetaStyle.Render(age)
	}

	text := marker + truncateToWidth(title, titleWidth)
	if current {
		return selectedStyle.Render(text)
	}
	return conversationStyle.Render(text)
}
