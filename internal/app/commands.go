package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	quickTimeout = 10 * time.Second
	// Longer than the transport's own send timeout, so the transport error
	// arrives before this context cancels the call.
	sendTimeout  = 150 * time.Second
	tickInterval = 100 * time.Millisecond
)

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func resolveActorCmd(api ChatAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), quickTimeout)
		defer cancel()
		actor, err := api.ResolveActor(ctx)
		return actorResolvedMsg{actor: actor, err: err}
	}
}

func loadInitialHistoryCmd(api ChatAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), quickTimeout)
		defer cancel()
		return initialHistoryMsg{err: api.LoadInitialHistory(ctx)}
	}
}

func refreshConversationsCmd(api ChatAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), quickTimeout)
		defer cancel()
		return conversationsRefreshedMsg{err: api.RefreshConversations(ctx)}
	}
}

func selectConversationCmd(api ChatAPI, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), quickTimeout)
		defer cancel()
		return conversationSelectedMsg{id: id, err: api.SelectConversation(ctx, id)}
	}
}

func sendCmd(api ChatAPI, seq int, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		return sendFinishedMsg{seq: seq, err: api.Send(ctx, text)}
	}
}

func grantLocationCmd(api ChatAPI, latitude, longitude float64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		err := api.GrantLocation(ctx, latitude, longitude)
		return locationDecisionMsg{granted: true, err: err}
	}
}

func denyLocationCmd(api ChatAPI) tea.Cmd {
	return func() tea.Msg {
		api.DenyLocation()
		return locationDecisionMsg{granted: false}
	}
}

func regenerateCmd(api ChatAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		return regenerateFinishedMsg{err: api.Regenerate(ctx)}
	}
}

func loadOlderPageCmd(api ChatAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), quickTimeout)
		defer cancel()
		return olderPageMsg{err: api.LoadOlderPage(ctx)}
	}
}

func startNewChatCmd(api ChatAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), quickTimeout)
		defer cancel()
		return newChatMsg{err: api.StartNewChat(ctx)}
	}
}

func renameConversationCmd(api ChatAPI, id, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), quickTimeout)
		defer cancel()
		return renameFinishedMsg{id: id, err: api.Rename(ctx, id, title)}
	}
}

func deleteConversationCmd(api ChatAPI, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), quickTimeout)
		defer cancel()
		return deleteFinishedMsg{id: id, err: api.Delete(ctx, id)}
	}
}

func attachImageCmd(api ChatAPI, path string) tea.Cmd {
	return func() tea.Msg {
		name := filepath.Base(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return imageAttachedMsg{name: name, err: err}
		}
		return imageAttachedMsg{name: name, err: api.SelectImage(name, mimeForFile(path), data)}
	}
}

func transcribeAudioCmd(api ChatAPI, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return transcriptionMsg{err: err}
		}
		mime := mimeForFile(path)
		if !strings.HasPrefix(mime, "audio/") {
			return transcriptionMsg{err: errors.New("not an audio file: " + filepath.Base(path))}
		}
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		text, err := api.AttachAudio(ctx, filepath.Base(path), mime, data)
		return transcriptionMsg{text: text, err: err}
	}
}

func setSidebarCollapsedCmd(api ChatAPI, collapsed bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), quickTimeout)
		defer cancel()
		api.SetSidebarCollapsed(ctx, collapsed)
		return sidebarToggledMsg{}
	}
}

func copyToClipboardCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardResultMsg{err: copyTextToClipboard(text)}
	}
}

// mimeByExt carries its own table; the system mime database is not
// guaranteed to know audio types.
var mimeByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".webm": "audio/webm",
}

func mimeForFile(path string) string {
	if m, ok := mimeByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return m
	}
	return "application/octet-stream"
}
