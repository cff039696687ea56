package app

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDeleteConversation
	confirmShareLocation
)

// ConfirmController handles the two modal decisions the chat view needs:
// deleting a conversation and approving a location-gated send.
type ConfirmController struct {
	kind         confirmKind
	title        string
	body         string
	confirmLabel string
	cancelLabel  string
	target       string
	yes          bool
}

func newConfirmController() *ConfirmController {
	return &ConfirmController{}
}

func (c *ConfirmController) Active() bool { return c.kind != confirmNone }

func (c *ConfirmController) Kind() confirmKind { return c.kind }

// Target is the conversation id a delete confirmation acts on.
func (c *ConfirmController) Target() string { return c.target }

func (c *ConfirmController) OpenDelete(id, title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "this chat"
	} else {
		title = "\"" + title + "\""
	}
	c.kind = confirmDeleteConversation
	c.title = "Delete chat?"
	c.body = "Delete " + title + " and its history. This cannot be undone."
	c.confirmLabel = "Delete"
	c.cancelLabel = "Cancel"
	c.target = id
	c.yes = false
}

func (c *ConfirmController) OpenShareLocation() {
	c.kind = confirmShareLocation
	c.title = "Share location?"
	c.body = "The assistant needs your location to answer. Your message will be resent with coordinates attached."
	c.confirmLabel = "Share"
	c.cancelLabel = "Deny"
	c.target = ""
	c.yes = true
}

func (c *ConfirmController) Close() {
	*c = ConfirmController{}
}

// HandleKey consumes one key press. decided reports whether the dialog is
// done; accepted is only meaningful when decided is true.
func (c *ConfirmController) HandleKey(key string) (decided, accepted bool) {
	switch key {
	case "esc", "n":
		return true, false
	case "y":
		return true, true
	case "left", "right", "tab", "shift+tab":
		c.yes = !c.yes
		return false, false
	case "enter":
		return true, c.yes
	}
	return false, false
}

func (c *ConfirmController) View(width int) string {
	if !c.Active() {
		return ""
	}
	boxWidth := clamp(width-8, 24, 60)
	inner := boxWidth - 4

	confirm := " " + c.confirmLabel + " "
	cancel := " " + c.cancelLabel + " "
	if c.yes {
		confirm = confirmActiveStyle.Render(confirm)
		cancel = confirmButtonStyle.Render(cancel)
	} else {
		confirm = confirmButtonStyle.Render(confirm)
		cancel = confirmActiveStyle.Render(cancel)
	}

	var b strings.Builder
	b.WriteString(confirmTitleStyle.Render(truncateToWidth(c.title, inner)))
	b.WriteString("\n\n")
	b.WriteString(xansi.Hardwrap(c.body, inner, true))
	b.WriteString("\n\n")
	b.WriteString(confirm + "  " + cancel)
	return confirmBorderStyle.Width(boxWidth).Render(b.String())
}
