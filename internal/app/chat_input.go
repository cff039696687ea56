package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ChatInput is the single-line composer at the bottom of the chat view.
type ChatInput struct {
	input textinput.Model
}

func newChatInput(width int) *ChatInput {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Message D23"
	ti.CharLimit = 0
	ti.Width = inputFieldWidth(width, ti.Prompt)
	return &ChatInput{input: ti}
}

func inputFieldWidth(total int, prompt string) int {
	return max(10, total-len(prompt)-1)
}

func (c *ChatInput) Focus() tea.Cmd { return c.input.Focus() }

func (c *ChatInput) Blur() { c.input.Blur() }

func (c *ChatInput) Focused() bool { return c.input.Focused() }

func (c *ChatInput) SetWidth(width int) {
	c.input.Width = inputFieldWidth(width, c.input.Prompt)
}

// Value returns the composed text with surrounding whitespace dropped.
func (c *ChatInput) Value() string { return strings.TrimSpace(c.input.Value()) }

func (c *ChatInput) SetValue(value string) {
	c.input.SetValue(value)
	c.input.CursorEnd()
}

func (c *ChatInput) Reset() { c.input.SetValue("") }

func (c *ChatInput) SetPlaceholder(text string) { c.input.Placeholder = text }

func (c *ChatInput) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

func (c *ChatInput) View() string { return c.input.View() }
