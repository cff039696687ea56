package app

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"d23/internal/types"
)

type transcriptOptions struct {
	width          int
	showTimestamps bool
	renderMarkdown bool
	now            time.Time
}

// renderTranscript lays the timeline out as chat bubbles: user messages on
// the right, replies on the left. User text is always shown verbatim; only
// replies go through the markdown renderer.
func renderTranscript(messages []types.Message, opts transcriptOptions) string {
	width := opts.width
	if width <= 0 {
		width = 80
	}
	if len(messages) == 0 {
		return chatMetaStyle.Render("No messages yet. Type below to start.")
	}
	lines := make([]string, 0, len(messages)*4)
	for _, msg := range messages {
		msgLines := renderMessage(msg, opts, width)
		if len(msgLines) == 0 {
			continue
		}
		lines = append(lines, msgLines...)
		lines = append(lines, "")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func renderMessage(msg types.Message, opts transcriptOptions, width int) []string {
	text := strings.TrimSpace(msg.Content)
	if text == "" && msg.MediaURL == "" {
		return nil
	}
	maxBubbleWidth := width - 4
	if maxBubbleWidth < 10 {
		maxBubbleWidth = width
	}
	innerWidth := maxBubbleWidth - 2 - 2
	if innerWidth < 1 {
		innerWidth = 1
	}

	var body string
	var bubbleStyle lipgloss.Style
	align := lipgloss.Left
	switch {
	case msg.Role == types.RoleUser:
		bubbleStyle = userBubbleStyle
		align = lipgloss.Right
		body = xansi.Hardwrap(text, innerWidth, true)
	case msg.IsError():
		bubbleStyle = errorBubbleStyle
		body = xansi.Hardwrap(text, innerWidth, true)
	default:
		bubbleStyle = agentBubbleStyle
		if opts.renderMarkdown {
			body = renderMarkdown(text, innerWidth)
		} else {
			body = xansi.Hardwrap(text, innerWidth, true)
		}
	}
	if msg.MediaURL != "" {
		media := chatMetaStyle.Render(truncateToWidth("[media] "+msg.MediaURL, innerWidth))
		if body == "" {
			body = media
		} else {
			body += "\n" + media
		}
	}

	bubble := bubbleStyle.Render(body)
	placed := lipgloss.PlaceHorizontal(width, align, bubble)
	lines := strings.Split(placed, "\n")

	switch {
	case msg.Role == types.RoleUser && msg.Pending:
		statusLine := userStatusStyle.Render("(sending…)")
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Right, statusLine))
	case opts.showTimestamps && !msg.CreatedAt.IsZero():
		meta := chatMetaStyle.Render(relativeTimestamp(msg.CreatedAt, opts.now))
		lines = append(lines, lipgloss.PlaceHorizontal(width, align, meta))
	}
	return lines
}
