package app

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptRename
	promptImagePath
	promptAudioPath
	promptCoordinates
)

// PromptController collects one line of input over the composer: a new
// conversation title, a file path to attach, or manual coordinates when
// none are configured.
type PromptController struct {
	kind   promptKind
	label  string
	target string
	input  textinput.Model
}

func newPromptController() *PromptController {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	return &PromptController{input: ti}
}

func (p *PromptController) Active() bool { return p.kind != promptNone }

func (p *PromptController) Kind() promptKind { return p.kind }

// Target is the conversation id a rename prompt acts on.
func (p *PromptController) Target() string { return p.target }

func (p *PromptController) OpenRename(id, current string, width int) tea.Cmd {
	return p.open(promptRename, "Rename chat: ", id, current, width)
}

func (p *PromptController) OpenImagePath(width int) tea.Cmd {
	return p.open(promptImagePath, "Attach image (path): ", "", "", width)
}

func (p *PromptController) OpenAudioPath(width int) tea.Cmd {
	return p.open(promptAudioPath, "Voice note (path): ", "", "", width)
}

func (p *PromptController) OpenCoordinates(width int) tea.Cmd {
	return p.open(promptCoordinates, "Location (lat, lon): ", "", "", width)
}

func (p *PromptController) open(kind promptKind, label, target, value string, width int) tea.Cmd {
	p.kind = kind
	p.label = label
	p.target = target
	p.input.SetValue(value)
	p.input.CursorEnd()
	p.SetWidth(width)
	return p.input.Focus()
}

func (p *PromptController) Close() {
	p.kind = promptNone
	p.label = ""
	p.target = ""
	p.input.Blur()
	p.input.SetValue("")
}

func (p *PromptController) SetWidth(width int) {
	p.input.Width = max(10, width-len(p.label)-1)
}

func (p *PromptController) Value() string { return strings.TrimSpace(p.input.Value()) }

func (p *PromptController) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *PromptController) View(width int) string {
	line := promptLabelStyle.Render(p.label) + p.input.View()
	return truncateToWidth(line, width)
}

func parseCoordinates(raw string) (latitude, longitude float64, err error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, errors.New("expected \"latitude, longitude\"")
	}
	latitude, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, errors.New("latitude is not a number")
	}
	longitude, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, errors.New("longitude is not a number")
	}
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return 0, 0, errors.New("coordinates out of range")
	}
	return latitude, longitude, nil
}
