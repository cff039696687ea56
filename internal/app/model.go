package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"d23/internal/chat"
	"d23/internal/config"
	"d23/internal/logging"
	"d23/internal/types"
)

type uiMode int

const (
	modeChat uiMode = iota
	modePicker
	modePrompt
	modeConfirm
)

const (
	sidebarMinWidth = 24
	sidebarMaxWidth = 40
	// chromeRows is header + notice + input + status.
	chromeRows = 4
	// followSlack keeps follow engaged when the viewport sits within a
	// couple of lines of the bottom.
	followSlack     = 2
	mouseWheelLines = 3
)

// Model is the bubbletea model for the chat view. All chat state lives in
// the reducer behind ChatAPI; the model holds render state only and reads a
// fresh snapshot whenever something may have changed.
type Model struct {
	api ChatAPI
	log logging.Logger

	uiConfig config.UIConfig
	coords   func() (latitude, longitude float64, ok bool)
	now      func() time.Time

	width  int
	height int

	mode     uiMode
	sidebar  *Sidebar
	viewport viewport.Model
	input    *ChatInput
	picker   *ConversationPicker
	confirm  *ConfirmController
	prompt   *PromptController
	loader   spinner.Model

	snap     chat.Snapshot
	snapKey  string
	resolved bool
	follow   bool

	olderWait   bool
	olderAnchor int
	sendSeq     int

	status     string
	toastText  string
	toastLevel toastLevel
	toastUntil time.Time
}

type Option func(*Model)

// WithClock fixes the model's notion of now. Tests use it to pin relative
// timestamps and toast expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithCoordinates supplies the location source consulted when the user
// approves a location-gated send.
func WithCoordinates(fn func() (latitude, longitude float64, ok bool)) Option {
	return func(m *Model) { m.coords = fn }
}

func NewModel(api ChatAPI, uiConfig config.UIConfig, log logging.Logger, opts ...Option) *Model {
	if log == nil {
		log = logging.Nop()
	}
	loader := spinner.New()
	loader.Spinner = spinner.Line

	m := &Model{
		api:      api,
		log:      log,
		uiConfig: uiConfig,
		coords:   func() (float64, float64, bool) { return 0, 0, false },
		now:      time.Now,
		sidebar:  newSidebar(),
		viewport: viewport.New(0, 0),
		input:    newChatInput(80),
		picker:   newConversationPicker(),
		confirm:  newConfirmController(),
		prompt:   newPromptController(),
		loader:   loader,
		follow:   true,
		status:   "connecting",
	}
	for _, opt := range opts {
		opt(m)
	}
	setMarkdownBackgroundDark(lipgloss.HasDarkBackground())
	return m
}

// Run starts the chat TUI and blocks until the user quits.
func Run(api ChatAPI, uiConfig config.UIConfig, log logging.Logger, opts ...Option) error {
	m := NewModel(api, uiConfig, log, opts...)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(resolveActorCmd(m.api), m.input.Focus(), tickCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tickMsg:
		if m.snap.Sending || m.snap.Attachment.Kind == types.AttachmentTranscribing {
			m.loader, _ = m.loader.Update(spinner.TickMsg{Time: time.Time(msg), ID: m.loader.ID()})
		}
		m.refreshSnapshot(false)
		return m, tickCmd()

	case actorResolvedMsg:
		if msg.err != nil {
			m.log.Error("resolve actor failed", logging.F("error", msg.err))
			m.status = "offline: " + briefError(msg.err)
			m.showErrorToast("could not resolve identity")
			return m, nil
		}
		m.resolved = true
		m.status = ""
		m.refreshSnapshot(false)
		return m, tea.Batch(loadInitialHistoryCmd(m.api), refreshConversationsCmd(m.api))

	case initialHistoryMsg:
		if msg.err != nil {
			m.showErrorToast("history load failed: " + briefError(msg.err))
			return m, nil
		}
		m.follow = true
		m.refreshSnapshot(true)
		m.viewport.GotoBottom()
		return m, nil

	case conversationsRefreshedMsg:
		if msg.err != nil {
			m.showWarningToast("conversation refresh failed: " + briefError(msg.err))
			return m, nil
		}
		m.refreshSnapshot(false)
		m.ensureCurrentVisible()
		return m, nil

	case conversationSelectedMsg:
		if msg.err != nil {
			m.showErrorToast("switch failed: " + briefError(msg.err))
			return m, nil
		}
		m.follow = true
		m.status = ""
		m.refreshSnapshot(true)
		m.viewport.GotoBottom()
		m.ensureCurrentVisible()
		return m, nil

	case sendFinishedMsg:
		if msg.seq != m.sendSeq {
			m.refreshSnapshot(false)
			return m, nil
		}
		return m, m.finishExchange(msg.err)

	case regenerateFinishedMsg:
		return m, m.finishExchange(msg.err)

	case locationDecisionMsg:
		return m, m.finishLocationDecision(msg)

	case olderPageMsg:
		m.olderWait = false
		if msg.err != nil {
			m.showWarningToast("older messages failed: " + briefError(msg.err))
			return m, nil
		}
		m.refreshSnapshot(true)
		if added := m.viewport.TotalLineCount() - m.olderAnchor; added > 0 {
			m.viewport.SetYOffset(m.viewport.YOffset + added)
		}
		m.status = ""
		return m, nil

	case newChatMsg:
		if msg.err != nil {
			m.showErrorToast("new chat failed: " + briefError(msg.err))
			return m, nil
		}
		m.follow = true
		m.refreshSnapshot(true)
		m.viewport.GotoBottom()
		m.showInfoToast("new chat started")
		return m, refreshConversationsCmd(m.api)

	case renameFinishedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, chat.ErrAuthRequired) {
				m.showWarningToast("sign in to rename chats")
			} else {
				m.showErrorToast("rename failed: " + briefError(msg.err))
			}
			return m, nil
		}
		m.refreshSnapshot(true)
		m.showInfoToast("chat renamed")
		return m, nil

	case deleteFinishedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, chat.ErrAuthRequired) {
				m.showWarningToast("sign in to delete chats")
			} else {
				m.showErrorToast("delete failed: " + briefError(msg.err))
			}
			return m, nil
		}
		m.follow = true
		m.refreshSnapshot(true)
		m.viewport.GotoBottom()
		m.showInfoToast("chat deleted")
		return m, refreshConversationsCmd(m.api)

	case imageAttachedMsg:
		if msg.err != nil {
			switch {
			case errors.Is(msg.err, types.ErrAttachmentTooLarge):
				m.showWarningToast("image exceeds the 20MB limit")
			case errors.Is(msg.err, types.ErrAttachmentNotImage):
				m.showWarningToast("that file is not an image")
			default:
				m.showErrorToast("attach failed: " + briefError(msg.err))
			}
			return m, nil
		}
		m.refreshSnapshot(false)
		m.showInfoToast("attached " + msg.name)
		return m, nil

	case transcriptionMsg:
		m.refreshSnapshot(false)
		if msg.err != nil {
			m.showErrorToast("transcription failed: " + briefError(msg.err))
			return m, nil
		}
		if msg.text == "" {
			m.showWarningToast("no speech recognized")
			return m, nil
		}
		m.input.SetValue(msg.text)
		m.status = "voice note transcribed; review and send"
		return m, nil

	case clipboardResultMsg:
		if msg.err != nil {
			m.showErrorToast(briefError(msg.err))
		} else {
			m.showInfoToast("copied reply")
		}
		return m, nil

	case sidebarToggledMsg:
		m.refreshSnapshot(false)
		m.resize(m.width, m.height)
		return m, nil
	}

	if m.mode == modePrompt {
		return m, m.prompt.Update(msg)
	}
	return m, m.input.Update(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case modePicker:
		return m.handlePickerKey(msg)
	case modeConfirm:
		return m.handleConfirmKey(msg)
	case modePrompt:
		return m.handlePromptKey(msg)
	}
	return m.handleChatKey(msg)
}

func (m *Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m, m.submitInput()
	case "esc":
		if m.input.Value() != "" {
			m.input.Reset()
		}
		return m, nil
	case "up":
		m.viewport.LineUp(1)
		m.syncFollow()
		return m, m.maybeLoadOlder()
	case "down":
		m.viewport.LineDown(1)
		m.syncFollow()
		return m, nil
	case "pgup":
		m.viewport.ViewUp()
		m.syncFollow()
		return m, m.maybeLoadOlder()
	case "pgdown":
		m.viewport.ViewDown()
		m.syncFollow()
		return m, nil
	case "ctrl+u":
		m.viewport.HalfViewUp()
		m.syncFollow()
		return m, m.maybeLoadOlder()
	case "ctrl+d":
		m.viewport.HalfViewDown()
		m.syncFollow()
		return m, nil
	case "home":
		m.viewport.GotoTop()
		m.syncFollow()
		return m, m.maybeLoadOlder()
	case "end":
		m.viewport.GotoBottom()
		m.syncFollow()
		return m, nil
	case "ctrl+n":
		m.status = "starting new chat"
		return m, startNewChatCmd(m.api)
	case "ctrl+k":
		m.openPicker()
		return m, nil
	case "ctrl+b":
		return m, setSidebarCollapsedCmd(m.api, !m.snap.SidebarCollapsed)
	case "ctrl+r":
		m.status = "regenerating"
		return m, regenerateCmd(m.api)
	case "ctrl+y":
		return m, m.copyLastReply()
	case "ctrl+o":
		m.mode = modePrompt
		m.input.Blur()
		return m, m.prompt.OpenImagePath(m.chatWidth())
	case "ctrl+t":
		m.mode = modePrompt
		m.input.Blur()
		m.api.BeginRecording()
		m.refreshSnapshot(false)
		return m, m.prompt.OpenAudioPath(m.chatWidth())
	case "ctrl+x":
		if !m.snap.Attachment.None() {
			m.api.ClearAttachment()
			m.refreshSnapshot(false)
			m.showInfoToast("attachment removed")
		}
		return m, nil
	case "f2":
		if !m.snap.Actor.Authenticated() {
			m.showWarningToast("sign in to rename chats")
			return m, nil
		}
		if m.snap.CurrentID == "" {
			m.showWarningToast("no chat selected")
			return m, nil
		}
		m.mode = modePrompt
		m.input.Blur()
		return m, m.prompt.OpenRename(m.snap.CurrentID, m.conversationTitle(), m.chatWidth())
	case "alt+d":
		if !m.snap.Actor.Authenticated() {
			m.showWarningToast("sign in to delete chats")
			return m, nil
		}
		if m.snap.CurrentID == "" {
			m.showWarningToast("no chat selected")
			return m, nil
		}
		m.mode = modeConfirm
		m.input.Blur()
		m.confirm.OpenDelete(m.snap.CurrentID, m.conversationTitle())
		return m, nil
	case "alt+up":
		return m, m.selectNeighbor(-1)
	case "alt+down":
		return m, m.selectNeighbor(1)
	}
	return m, m.input.Update(msg)
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+k":
		m.closePicker()
		return m, m.input.Focus()
	case "enter":
		id := m.picker.SelectedID()
		m.closePicker()
		if id == "" || id == m.snap.CurrentID {
			return m, m.input.Focus()
		}
		m.status = "switching chat"
		return m, tea.Batch(m.input.Focus(), selectConversationCmd(m.api, id))
	case "up":
		m.picker.Move(-1)
		return m, nil
	case "down":
		m.picker.Move(1)
		return m, nil
	case "backspace":
		m.picker.BackspaceQuery()
		return m, nil
	}
	if msg.Type == tea.KeyRunes && !msg.Alt {
		m.picker.AppendQuery(string(msg.Runes))
	}
	return m, nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	decided, accepted := m.confirm.HandleKey(msg.String())
	if !decided {
		return m, nil
	}
	kind := m.confirm.Kind()
	target := m.confirm.Target()
	m.confirm.Close()
	m.mode = modeChat

	switch kind {
	case confirmDeleteConversation:
		if !accepted {
			return m, m.input.Focus()
		}
		m.status = "deleting"
		return m, tea.Batch(m.input.Focus(), deleteConversationCmd(m.api, target))
	case confirmShareLocation:
		if !accepted {
			return m, tea.Batch(m.input.Focus(), denyLocationCmd(m.api))
		}
		if lat, lon, ok := m.coords(); ok {
			m.status = "sharing location"
			return m, tea.Batch(m.input.Focus(), grantLocationCmd(m.api, lat, lon))
		}
		m.mode = modePrompt
		return m, m.prompt.OpenCoordinates(m.chatWidth())
	}
	return m, m.input.Focus()
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		kind := m.prompt.Kind()
		m.prompt.Close()
		m.mode = modeChat
		switch kind {
		case promptAudioPath:
			m.api.ClearAttachment()
			m.refreshSnapshot(false)
		case promptCoordinates:
			return m, tea.Batch(m.input.Focus(), denyLocationCmd(m.api))
		}
		return m, m.input.Focus()

	case "enter":
		value := m.prompt.Value()
		kind := m.prompt.Kind()
		target := m.prompt.Target()

		if kind == promptCoordinates {
			lat, lon, err := parseCoordinates(value)
			if err != nil {
				m.showWarningToast(err.Error())
				return m, nil
			}
			m.prompt.Close()
			m.mode = modeChat
			m.status = "sharing location"
			return m, tea.Batch(m.input.Focus(), grantLocationCmd(m.api, lat, lon))
		}

		m.prompt.Close()
		m.mode = modeChat
		if value == "" {
			if kind == promptAudioPath {
				m.api.ClearAttachment()
				m.refreshSnapshot(false)
			}
			return m, m.input.Focus()
		}
		switch kind {
		case promptRename:
			m.status = "renaming"
			return m, tea.Batch(m.input.Focus(), renameConversationCmd(m.api, target, value))
		case promptImagePath:
			return m, tea.Batch(m.input.Focus(), attachImageCmd(m.api, value))
		case promptAudioPath:
			m.status = "transcribing"
			return m, tea.Batch(m.input.Focus(), transcribeAudioCmd(m.api, value))
		}
		return m, m.input.Focus()
	}
	return m, m.prompt.Update(msg)
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeConfirm, modePrompt:
		return m, nil
	case modePicker:
		switch {
		case msg.Button == tea.MouseButtonWheelUp && msg.Action == tea.MouseActionPress:
			m.picker.Move(-1)
		case msg.Button == tea.MouseButtonWheelDown && msg.Action == tea.MouseActionPress:
			m.picker.Move(1)
		case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			if id, ok := m.picker.HandleClick(msg.Y - 1); ok {
				m.closePicker()
				if id == m.snap.CurrentID {
					return m, m.input.Focus()
				}
				m.status = "switching chat"
				return m, tea.Batch(m.input.Focus(), selectConversationCmd(m.api, id))
			}
		}
		return m, nil
	}

	inSidebar := m.sidebarWidth() > 0 && msg.X < m.sidebarWidth()
	switch {
	case msg.Button == tea.MouseButtonWheelUp && msg.Action == tea.MouseActionPress:
		if inSidebar {
			m.sidebar.ScrollBy(-1, len(m.snap.Conversations))
			return m, nil
		}
		m.viewport.LineUp(mouseWheelLines)
		m.syncFollow()
		return m, m.maybeLoadOlder()
	case msg.Button == tea.MouseButtonWheelDown && msg.Action == tea.MouseActionPress:
		if inSidebar {
			m.sidebar.ScrollBy(1, len(m.snap.Conversations))
			return m, nil
		}
		m.viewport.LineDown(mouseWheelLines)
		m.syncFollow()
		return m, nil
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && inSidebar:
		if id, ok := m.sidebar.ItemAt(msg.Y-1, m.snap.Conversations); ok && id != m.snap.CurrentID {
			m.status = "switching chat"
			return m, selectConversationCmd(m.api, id)
		}
	}
	return m, nil
}

func (m *Model) submitInput() tea.Cmd {
	text := m.input.Value()
	if text == "" {
		if m.snap.Attachment.Image() {
			m.showWarningToast("add a caption to send the image")
		}
		return nil
	}
	if m.snap.Sending {
		m.showWarningToast("a send is already in flight")
		return nil
	}
	m.input.Reset()
	m.follow = true
	m.status = "sending"
	m.sendSeq++
	return sendCmd(m.api, m.sendSeq, text)
}

func (m *Model) finishExchange(err error) tea.Cmd {
	m.status = ""
	m.refreshSnapshot(false)
	if m.follow {
		m.viewport.GotoBottom()
	}
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrSendInFlight):
			m.showWarningToast("a send is already in flight")
		case errors.Is(err, chat.ErrEmptyMessage):
			m.showWarningToast("nothing to send")
		case errors.Is(err, chat.ErrAuthRequired):
			m.showWarningToast("sign in required")
		default:
			// The timeline already shows the rollback bubble.
			m.status = "send failed"
		}
		return nil
	}
	if m.snap.AwaitingLocation && !m.confirm.Active() {
		m.mode = modeConfirm
		m.input.Blur()
		m.confirm.OpenShareLocation()
		return nil
	}
	return refreshConversationsCmd(m.api)
}

func (m *Model) finishLocationDecision(msg locationDecisionMsg) tea.Cmd {
	m.refreshSnapshot(false)
	if msg.err != nil {
		switch {
		case errors.Is(msg.err, chat.ErrNoPendingLocation):
			m.showWarningToast("nothing is waiting on location")
		case errors.Is(msg.err, chat.ErrSendInFlight):
			m.showWarningToast("a send is already in flight")
		default:
			m.status = "location send failed"
		}
		return nil
	}
	if !msg.granted {
		m.status = "location request denied"
		return nil
	}
	m.status = ""
	if m.follow {
		m.viewport.GotoBottom()
	}
	return refreshConversationsCmd(m.api)
}

func (m *Model) maybeLoadOlder() tea.Cmd {
	if !m.viewport.AtTop() || m.olderWait || len(m.snap.Messages) == 0 {
		return nil
	}
	m.olderWait = true
	m.olderAnchor = m.viewport.TotalLineCount()
	m.status = "loading older messages"
	return loadOlderPageCmd(m.api)
}

func (m *Model) copyLastReply() tea.Cmd {
	for i := len(m.snap.Messages) - 1; i >= 0; i-- {
		message := m.snap.Messages[i]
		if message.Role == types.RoleAssistant && !message.IsError() {
			return copyToClipboardCmd(message.Content)
		}
	}
	m.showWarningToast("no reply to copy")
	return nil
}

func (m *Model) selectNeighbor(delta int) tea.Cmd {
	conversations := m.snap.Conversations
	if len(conversations) == 0 {
		return nil
	}
	index := -1
	for i, convo := range conversations {
		if convo.ID == m.snap.CurrentID {
			index = i
			break
		}
	}
	next := clamp(index+delta, 0, len(conversations)-1)
	if index == -1 {
		next = 0
	}
	if next == index {
		return nil
	}
	m.sidebar.EnsureVisible(next, len(conversations))
	m.status = "switching chat"
	return selectConversationCmd(m.api, conversations[next].ID)
}

func (m *Model) openPicker() {
	m.mode = modePicker
	m.input.Blur()
	m.picker.SetSize(m.width, m.bodyHeight())
	m.picker.Open(m.snap.Conversations, m.snap.CurrentID, m.now())
}

func (m *Model) closePicker() {
	m.mode = modeChat
}

func (m *Model) syncFollow() {
	follow := m.nearBottom()
	if follow == m.follow {
		return
	}
	m.follow = follow
	if follow {
		m.status = "follow: on"
	} else {
		m.status = "follow: paused"
	}
}

func (m *Model) nearBottom() bool {
	hidden := m.viewport.TotalLineCount() - (m.viewport.YOffset + m.viewport.VisibleLineCount())
	return hidden <= followSlack
}

// refreshSnapshot re-reads reducer state and re-renders the transcript when
// its fingerprint moved. force skips the fingerprint check.
func (m *Model) refreshSnapshot(force bool) {
	m.snap = m.api.Snapshot()
	if m.width <= 0 || m.height <= 0 {
		return
	}
	key := m.transcriptKey()
	if !force && key == m.snapKey {
		return
	}
	m.snapKey = key
	m.rebuildTranscript()
}

func (m *Model) transcriptKey() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%d|%d", m.snap.CurrentID, m.chatWidth(), timestampRenderBucket(m.now()))
	for _, message := range m.snap.Messages {
		fmt.Fprintf(&b, "|%s:%t:%d", message.ID, message.Pending, len(message.Content))
	}
	return b.String()
}

func (m *Model) rebuildTranscript() {
	content := renderTranscript(m.snap.Messages, transcriptOptions{
		width:          m.chatWidth(),
		showTimestamps: m.uiConfig.ShowTimestamps(),
		renderMarkdown: m.uiConfig.RenderMarkdown(),
		now:            m.now(),
	})
	m.viewport.SetContent(content)
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) ensureCurrentVisible() {
	for i, convo := range m.snap.Conversations {
		if convo.ID == m.snap.CurrentID {
			m.sidebar.EnsureVisible(i, len(m.snap.Conversations))
			return
		}
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	if width <= 0 || height <= 0 {
		return
	}
	body := m.bodyHeight()
	m.sidebar.SetSize(m.sidebarWidth(), body)
	m.viewport.Width = m.chatWidth()
	m.viewport.Height = body
	m.input.SetWidth(m.chatWidth())
	m.prompt.SetWidth(m.chatWidth())
	m.picker.SetSize(width, body)
	m.refreshSnapshot(true)
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) bodyHeight() int {
	return max(1, m.height-chromeRows)
}

func (m *Model) sidebarWidth() int {
	if m.snap.SidebarCollapsed {
		return 0
	}
	if m.width < sidebarMinWidth*2 {
		return 0
	}
	return clamp(m.width/3, sidebarMinWidth, sidebarMaxWidth)
}

func (m *Model) chatWidth() int {
	width := m.width - m.sidebarWidth()
	if m.sidebarWidth() > 0 {
		width--
	}
	return max(1, width)
}

func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	sections := []string{
		m.headerLine(),
		m.bodyView(),
		m.noticeLine(),
		m.inputLine(),
		m.statusLine(),
	}
	return strings.Join(sections, "\n")
}

func (m *Model) bodyView() string {
	body := m.bodyHeight()
	switch m.mode {
	case modePicker:
		return m.picker.View()
	case modeConfirm:
		return lipgloss.Place(m.width, body, lipgloss.Center, lipgloss.Center, m.confirm.View(m.width))
	}

	chatView := m.viewport.View()
	sidebarWidth := m.sidebarWidth()
	if sidebarWidth <= 0 {
		return chatView
	}
	sidebarView := m.sidebar.View(m.snap.Conversations, m.snap.CurrentID, m.now())
	divider := dividerStyle.Render(strings.TrimRight(strings.Repeat("│\n", body), "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebarView, divider, chatView)
}

func (m *Model) headerLine() string {
	left := headerStyle.Render("D23") + "  " + m.conversationTitle()
	badge := "connecting…"
	if m.resolved {
		badge = "anonymous"
		if m.snap.Actor.Authenticated() {
			badge = "signed in"
		}
	}
	right := headerBadgeStyle.Render(badge)
	gap := m.width - xansi.StringWidth(left) - xansi.StringWidth(right)
	if gap < 1 {
		left = truncateToWidth(left, max(1, m.width-xansi.StringWidth(right)-1))
		gap = max(1, m.width-xansi.StringWidth(left)-xansi.StringWidth(right))
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) conversationTitle() string {
	for _, convo := range m.snap.Conversations {
		if convo.ID == m.snap.CurrentID {
			if title := strings.TrimSpace(convo.Title); title != "" {
				return title
			}
			break
		}
	}
	return types.DefaultTitle
}

func (m *Model) noticeLine() string {
	var text string
	switch {
	case m.snap.Attachment.Kind == types.AttachmentTranscribing:
		text = statusStyle.Render(m.loader.View() + " transcribing " + m.snap.Attachment.Name + "…")
	case m.snap.Attachment.Kind == types.AttachmentRecording:
		text = attachmentStyle.Render("voice note: enter a file path above, esc to cancel")
	case m.snap.Attachment.Image():
		size := humanSize(len(m.snap.Attachment.Data))
		text = attachmentStyle.Render(fmt.Sprintf("image attached: %s (%s) · ctrl+x to remove", m.snap.Attachment.Name, size))
	case m.snap.AwaitingLocation:
		text = attachmentStyle.Render("waiting on a location decision")
	case m.snap.Sending:
		text = statusStyle.Render(m.loader.View() + " thinking…")
	}
	if text == "" {
		return ""
	}
	return truncateToWidth(text, m.width)
}

func (m *Model) inputLine() string {
	if m.mode == modePrompt {
		return m.prompt.View(m.width)
	}
	return m.input.View()
}

func (m *Model) statusLine() string {
	if toast := m.toastLine(m.width); toast != "" {
		return toast
	}
	help := helpStyle.Render(m.helpText())
	status := strings.TrimSpace(m.status)
	if status == "" {
		return truncateToWidth(help, m.width)
	}
	right := statusStyle.Render(status)
	gap := m.width - xansi.StringWidth(help) - xansi.StringWidth(right)
	if gap < 1 {
		return truncateToWidth(right, m.width)
	}
	return help + strings.Repeat(" ", gap) + right
}

func (m *Model) helpText() string {
	switch m.mode {
	case modePicker:
		return "type to filter · enter switch · esc close"
	case modeConfirm:
		return "enter confirm · tab toggle · esc cancel"
	case modePrompt:
		return "enter submit · esc cancel"
	}
	return "enter send · ctrl+k chats · ctrl+n new · ctrl+o image · ctrl+t voice · ctrl+r retry · ctrl+y copy · ctrl+c quit"
}

func briefError(err error) string {
	if err == nil {
		return ""
	}
	return truncateToWidth(strings.TrimSpace(err.Error()), 60)
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
