package app

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"d23/internal/types"
)

// ConversationPicker is the ctrl+k switcher: type to filter, arrows to move,
// enter to jump. Filtering is fuzzy subsequence match over title and id.
type ConversationPicker struct {
	width   int
	height  int
	cursor  int
	offset  int
	query   string
	options []pickerOption
	visible []int
}

type pickerOption struct {
	id    string
	label string
	age   string
}

func newConversationPicker() *ConversationPicker {
	return &ConversationPicker{}
}

func (p *ConversationPicker) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.clampOffset()
}

func (p *ConversationPicker) Open(conversations []types.Conversation, currentID string, now time.Time) {
	p.query = ""
	p.options = p.options[:0]
	for _, convo := range conversations {
		label := strings.TrimSpace(convo.Title)
		if label == "" {
			label = types.DefaultTitle
		}
		age := ""
		if !convo.LastMessageAt.IsZero() {
			age = relativeTimestamp(convo.LastMessageAt, now)
		}
		p.options = append(p.options, pickerOption{id: convo.ID, label: label, age: age})
	}
	p.rebuildVisible()
	p.cursor = 0
	p.offset = 0
	for pos, optionIndex := range p.visible {
		if p.options[optionIndex].id == currentID {
			p.cursor = pos
			break
		}
	}
	p.ensureVisible()
}

func (p *ConversationPicker) Move(delta int) bool {
	if len(p.visible) == 0 || delta == 0 {
		return false
	}
	next := clamp(p.cursor+delta, 0, len(p.visible)-1)
	if next == p.cursor {
		return false
	}
	p.cursor = next
	p.ensureVisible()
	return true
}

func (p *ConversationPicker) SelectedID() string {
	if p.cursor < 0 || p.cursor >= len(p.visible) {
		return ""
	}
	return p.options[p.visible[p.cursor]].id
}

func (p *ConversationPicker) Query() string {
	return p.query
}

func (p *ConversationPicker) AppendQuery(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	return p.setQuery(p.query + text)
}

func (p *ConversationPicker) BackspaceQuery() bool {
	if p.query == "" {
		return false
	}
	runes := []rune(p.query)
	return p.setQuery(string(runes[:len(runes)-1]))
}

func (p *ConversationPicker) setQuery(query string) bool {
	if query == p.query {
		return false
	}
	p.query = query
	p.rebuildVisible()
	p.cursor = 0
	p.offset = 0
	return true
}

// HandleClick maps a row (relative to the picker top) to an option id.
func (p *ConversationPicker) HandleClick(row int) (string, bool) {
	row -= pickerQueryRows
	if row < 0 || row >= p.visibleHeight() {
		return "", false
	}
	index := p.offset + row
	if index < 0 || index >= len(p.visible) {
		return "", false
	}
	p.cursor = index
	return p.options[p.visible[index]].id, true
}

const pickerQueryRows = 2

func (p *ConversationPicker) View() string {
	if p.width <= 0 || p.height <= 0 {
		return ""
	}
	lines := make([]string, 0, p.height)
	queryLine := pickerTitleStyle.Render("Switch chat: ") + p.query + "▌"
	lines = append(lines, truncateToWidth(queryLine, p.width))
	lines = append(lines, "")

	if len(p.visible) == 0 {
		lines = append(lines, chatMetaStyle.Render("No matches."))
	}
	end := min(len(p.visible), p.offset+p.visibleHeight())
	for pos := p.offset; pos < end; pos++ {
		option := p.options[p.visible[pos]]
		row := "  " + option.label
		if option.age != "" {
			row += "  " + option.age
		}
		row = truncateToWidth(row, p.width)
		if pos == p.cursor {
			row = selectedStyle.Render("> " + strings.TrimPrefix(row, "  "))
		}
		lines = append(lines, row)
	}
	for len(lines) < p.height {
		lines = append(lines, "")
	}
	return padLines(lines[:p.height], p.width)
}

func (p *ConversationPicker) visibleHeight() int {
	return max(1, p.height-pickerQueryRows)
}

func (p *ConversationPicker) ensureVisible() {
	if p.cursor < p.offset {
		p.offset = p.cursor
	} else if p.cursor >= p.offset+p.visibleHeight() {
		p.offset = p.cursor - p.visibleHeight() + 1
	}
	p.clampOffset()
}

func (p *ConversationPicker) clampOffset() {
	p.offset = clamp(p.offset, 0, max(0, len(p.visible)-p.visibleHeight()))
}

func (p *ConversationPicker) rebuildVisible() {
	p.visible = p.visible[:0]
	query := normalizeMatchText(p.query)
	if query == "" {
		for i := range p.options {
			p.visible = append(p.visible, i)
		}
		return
	}
	type match struct {
		index int
		score int
	}
	matches := make([]match, 0, len(p.options))
	for i, option := range p.options {
		score, ok := fuzzyScore(query, option.label+" "+option.id)
		if !ok {
			continue
		}
		matches = append(matches, match{index: i, score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].index < matches[j].index
	})
	for _, m := range matches {
		p.visible = append(p.visible, m.index)
	}
}

// fuzzyScore requires every query rune to appear in order. Boundary hits,
// consecutive runs and early positions score higher; longer candidates pay
// a small length penalty.
func fuzzyScore(query, candidate string) (int, bool) {
	qr := []rune(normalizeMatchText(query))
	cr := []rune(normalizeMatchText(candidate))
	if len(qr) == 0 {
		return 0, true
	}
	if len(cr) == 0 {
		return 0, false
	}
	qi := 0
	prev := -2
	score := 0
	for ci, ch := range cr {
		if qi >= len(qr) || ch != qr[qi] {
			continue
		}
		bonus := 10
		if ci == 0 || boundaryRune(cr[ci-1]) {
			bonus += 6
		}
		if prev+1 == ci {
			bonus += 8
		}
		if ci < 8 {
			bonus += 4
		}
		score += bonus
		prev = ci
		qi++
		if qi == len(qr) {
			break
		}
	}
	if qi != len(qr) {
		return 0, false
	}
	score -= len(cr) - len(qr)
	return score, true
}

func normalizeMatchText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func boundaryRune(ch rune) bool {
	if unicode.IsSpace(ch) {
		return true
	}
	return ch == '_' || ch == '-' || ch == '/' || ch == '.' || ch == ':'
}
