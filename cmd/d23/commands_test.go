package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"d23/internal/chat"
	"d23/internal/config"
	"d23/internal/logging"
	"d23/internal/types"
)

func TestSendCommandPrintsReply(t *testing.T) {
	stdout := &bytes.Buffer{}
	fake := &fakeCommandSession{
		snap: chat.Snapshot{
			Messages: []types.Message{
				{ID: "u-1", Role: types.RoleUser, Content: "hello"},
				{ID: "a-1", Role: types.RoleAssistant, Content: "hi there"},
			},
		},
	}
	cmd := NewSendCommand(stdout, &bytes.Buffer{}, fixedFactory(fake))

	if err := cmd.Run([]string{"hello"}); err != nil {
		t.Fatalf("expected send to succeed, got err=%v", err)
	}
	if fake.resolveCalls != 1 {
		t.Fatalf("expected resolve once, got %d", fake.resolveCalls)
	}
	if fake.initialHistoryCalls != 1 || fake.refreshCalls != 1 {
		t.Fatalf("expected history and refresh once, got %d/%d", fake.initialHistoryCalls, fake.refreshCalls)
	}
	if len(fake.sentTexts) != 1 || fake.sentTexts[0] != "hello" {
		t.Fatalf("unexpected sent texts: %v", fake.sentTexts)
	}
	if got := stdout.String(); got != "hi there\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}
	if fake.closeCalls != 1 {
		t.Fatalf("expected session closed once, got %d", fake.closeCalls)
	}
}

func TestSendCommandJoinsArgsAndSelectsConversation(t *testing.T) {
	fake := &fakeCommandSession{
		snap: chat.Snapshot{
			Messages: []types.Message{{ID: "a-1", Role: types.RoleAssistant, Content: "nothing much"}},
		},
	}
	cmd := NewSendCommand(&bytes.Buffer{}, &bytes.Buffer{}, fixedFactory(fake))

	if err := cmd.Run([]string{"-conversation", "conv-2", "what", "is", "new"}); err != nil {
		t.Fatalf("expected send to succeed, got err=%v", err)
	}
	if len(fake.selectedIDs) != 1 || fake.selectedIDs[0] != "conv-2" {
		t.Fatalf("unexpected selections: %v", fake.selectedIDs)
	}
	if len(fake.sentTexts) != 1 || fake.sentTexts[0] != "what is new" {
		t.Fatalf("unexpected sent texts: %v", fake.sentTexts)
	}
}

func TestSendCommandRequiresTextOrImage(t *testing.T) {
	fake := &fakeCommandSession{}
	cmd := NewSendCommand(&bytes.Buffer{}, &bytes.Buffer{}, fixedFactory(fake))

	err := cmd.Run(nil)
	if err == nil || !strings.Contains(err.Error(), "message text") {
		t.Fatalf("expected text validation error, got %v", err)
	}
	if len(fake.sentTexts) != 0 {
		t.Fatalf("expected no send, got %v", fake.sentTexts)
	}
}

func TestSendCommandAttachesImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0o600); err != nil {
		t.Fatalf("write image: %v", err)
	}
	fake := &fakeCommandSession{
		snap: chat.Snapshot{
			Messages: []types.Message{{ID: "a-1", Role: types.RoleAssistant, Content: "a nice photo"}},
		},
	}
	cmd := NewSendCommand(&bytes.Buffer{}, &bytes.Buffer{}, fixedFactory(fake))

	if err := cmd.Run([]string{"-image", path, "look"}); err != nil {
		t.Fatalf("expected send to succeed, got err=%v", err)
	}
	if len(fake.imageSelections) != 1 || fake.imageSelections[0] != "photo.png:image/png:9" {
		t.Fatalf("unexpected image selections: %v", fake.imageSelections)
	}
}

func TestSendCommandMissingImageFileFails(t *testing.T) {
	fake := &fakeCommandSession{}
	cmd := NewSendCommand(&bytes.Buffer{}, &bytes.Buffer{}, fixedFactory(fake))

	err := cmd.Run([]string{"-image", filepath.Join(t.TempDir(), "nope.png"), "look"})
	if err == nil {
		t.Fatal("expected an error for a missing image file")
	}
	if len(fake.imageSelections) != 0 || len(fake.sentTexts) != 0 {
		t.Fatalf("expected no session activity, got images=%v sends=%v", fake.imageSelections, fake.sentTexts)
	}
}

func TestSendCommandSharesLocationWhenAsked(t *testing.T) {
	stdout := &bytes.Buffer{}
	granted := chat.Snapshot{
		Messages: []types.Message{{ID: "a-2", Role: types.RoleAssistant, Content: "18C and clear in Paris"}},
	}
	fake := &fakeCommandSession{
		snap:            chat.Snapshot{AwaitingLocation: true},
		grantSnap:       &granted,
		coordsLatitude:  48.8566,
		coordsLongitude: 2.3522,
		coordsOK:        true,
	}
	cmd := NewSendCommand(stdout, &bytes.Buffer{}, fixedFactory(fake))

	if err := cmd.Run([]string{"-share-location", "weather?"}); err != nil {
		t.Fatalf("expected send to succeed, got err=%v", err)
	}
	if fake.grantCalls != 1 {
		t.Fatalf("expected one grant, got %d", fake.grantCalls)
	}
	if fake.grantLatitude != 48.8566 || fake.grantLongitude != 2.3522 {
		t.Fatalf("unexpected coordinates: %v,%v", fake.grantLatitude, fake.grantLongitude)
	}
	if got := stdout.String(); got != "18C and clear in Paris\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestSendCommandLocationWithoutFlagFails(t *testing.T) {
	fake := &fakeCommandSession{
		snap: chat.Snapshot{AwaitingLocation: true},
	}
	cmd := NewSendCommand(&bytes.Buffer{}, &bytes.Buffer{}, fixedFactory(fake))

	err := cmd.Run([]string{"weather?"})
	if err == nil || !strings.Contains(err.Error(), "share-location") {
		t.Fatalf("expected location hint error, got %v", err)
	}
	if fake.grantCalls != 0 {
		t.Fatalf("expected no grant, got %d", fake.grantCalls)
	}
}

func TestSendCommandLocationWithoutCoordinatesFails(t *testing.T) {
	fake := &fakeCommandSession{
		snap: chat.Snapshot{AwaitingLocation: true},
	}
	cmd := NewSendCommand(&bytes.Buffer{}, &bytes.Buffer{}, fixedFactory(fake))

	err := cmd.Run([]string{"-share-location", "weather?"})
	if err == nil || !strings.Contains(err.Error(), "no coordinates configured") {
		t.Fatalf("expected coordinates error, got %v", err)
	}
	if fake.grantCalls != 0 {
		t.Fatalf("expected no grant, got %d", fake.grantCalls)
	}
}

func TestSendCommandPropagatesSendError(t *testing.T) {
	fake := &fakeCommandSession{sendErr: errors.New("backend unavailable")}
	cmd := NewSendCommand(&bytes.Buffer{}, &bytes.Buffer{}, fixedFactory(fake))

	err := cmd.Run([]string{"hello"})
	if err == nil || !strings.Contains(err.Error(), "backend unavailable") {
		t.Fatalf("expected transport error, got %v", err)
	}
	if fake.closeCalls != 1 {
		t.Fatalf("expected session closed once, got %d", fake.closeCalls)
	}
}

func TestSessionsCommandPrintsTable(t *testing.T) {
	stdout := &bytes.Buffer{}
	fake := &fakeCommandSession{
		snap: chat.Snapshot{
			Conversations: []types.Conversation{
				{ID: "conv-1", Title: "Grocery list", MessageCount: 4, LastMessageAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
				{ID: "conv-2"},
			},
		},
	}
	cmd := NewSessionsCommand(stdout, &bytes.Buffer{}, fixedFactory(fake))

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected sessions to succeed, got err=%v", err)
	}
	if fake.resolveCalls != 1 || fake.initialHistoryCalls != 1 || fake.refreshCalls != 1 {
		t.Fatalf("unexpected call counts: resolve=%d history=%d refresh=%d", fake.resolveCalls, fake.initialHistoryCalls, fake.refreshCalls)
	}
	out := stdout.String()
	if !strings.Contains(out, "ID") || !strings.Contains(out, "TITLE") {
		t.Fatalf("expected header in output, got %q", out)
	}
	if !strings.Contains(out, "conv-1") || !strings.Contains(out, "Grocery list") {
		t.Fatalf("expected conversation row in output, got %q", out)
	}
	if !strings.Contains(out, "New chat") {
		t.Fatalf("expected untitled fallback in output, got %q", out)
	}
}

func TestHistoryCommandPrintsTranscript(t *testing.T) {
	stdout := &bytes.Buffer{}
	fake := &fakeCommandSession{
		snap: chat.Snapshot{
			Messages: []types.Message{
				{ID: "u-1", Role: types.RoleUser, Content: "question 1"},
				{ID: "a-1", Role: types.RoleAssistant, Content: "answer 1", MediaURL: "https://cdn.d23.ai/a.png"},
			},
		},
	}
	cmd := NewHistoryCommand(stdout, &bytes.Buffer{}, fixedFactory(fake))

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected history to succeed, got err=%v", err)
	}
	if fake.refreshCalls != 1 || len(fake.selectedIDs) != 0 {
		t.Fatalf("unexpected calls: refresh=%d selections=%v", fake.refreshCalls, fake.selectedIDs)
	}
	out := stdout.String()
	if !strings.Contains(out, "user: question 1") || !strings.Contains(out, "assistant: answer 1") {
		t.Fatalf("expected transcript lines, got %q", out)
	}
	if !strings.Contains(out, "media: https://cdn.d23.ai/a.png") {
		t.Fatalf("expected media line, got %q", out)
	}
}

func TestHistoryCommandSelectsAndLimits(t *testing.T) {
	stdout := &bytes.Buffer{}
	fake := &fakeCommandSession{
		snap: chat.Snapshot{
			Messages: []types.Message{
				{ID: "u-1", Role: types.RoleUser, Content: "question 1"},
				{ID: "a-1", Role: types.RoleAssistant, Content: "answer 1"},
			},
		},
	}
	cmd := NewHistoryCommand(stdout, &bytes.Buffer{}, fixedFactory(fake))

	if err := cmd.Run([]string{"-n", "1", "conv-9"}); err != nil {
		t.Fatalf("expected history to succeed, got err=%v", err)
	}
	if len(fake.selectedIDs) != 1 || fake.selectedIDs[0] != "conv-9" {
		t.Fatalf("unexpected selections: %v", fake.selectedIDs)
	}
	if fake.refreshCalls != 0 {
		t.Fatalf("expected no refresh when a conversation is named, got %d", fake.refreshCalls)
	}
	out := stdout.String()
	if !strings.Contains(out, "answer 1") || strings.Contains(out, "question 1") {
		t.Fatalf("expected only the newest message, got %q", out)
	}
}

func TestHistoryCommandEmptyTranscript(t *testing.T) {
	stdout := &bytes.Buffer{}
	fake := &fakeCommandSession{}
	cmd := NewHistoryCommand(stdout, &bytes.Buffer{}, fixedFactory(fake))

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected history to succeed, got err=%v", err)
	}
	if got := stdout.String(); got != "no messages\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestStartCommandPrintsMintedSession(t *testing.T) {
	stdout := &bytes.Buffer{}
	fake := &fakeCommandSession{
		snap: chat.Snapshot{CurrentID: "anon-42"},
	}
	cmd := NewStartCommand(stdout, &bytes.Buffer{}, fixedFactory(fake))

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected new to succeed, got err=%v", err)
	}
	if fake.newChatCalls != 1 {
		t.Fatalf("expected one new chat, got %d", fake.newChatCalls)
	}
	if fake.initialHistoryCalls != 1 {
		t.Fatalf("expected initial history before the switch, got %d", fake.initialHistoryCalls)
	}
	if got := stdout.String(); got != "anon-42\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestStartCommandDeferredConversation(t *testing.T) {
	stdout := &bytes.Buffer{}
	fake := &fakeCommandSession{}
	cmd := NewStartCommand(stdout, &bytes.Buffer{}, fixedFactory(fake))

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected new to succeed, got err=%v", err)
	}
	if !strings.Contains(stdout.String(), "next send") {
		t.Fatalf("unexpected stdout: %q", stdout.String())
	}
}

func TestRenameCommandJoinsTitle(t *testing.T) {
	stdout := &bytes.Buffer{}
	fake := &fakeCommandSession{}
	cmd := NewRenameCommand(stdout, &bytes.Buffer{}, fixedFactory(fake))

	if err := cmd.Run([]string{"conv-1", "Errands", "list"}); err != nil {
		t.Fatalf("expected rename to succeed, got err=%v", err)
	}
	if fake.renamedID != "conv-1" || fake.renamedTitle != "Errands list" {
		t.Fatalf("unexpected rename: id=%q title=%q", fake.renamedID, fake.renamedTitle)
	}
	if got := stdout.String(); got != "ok\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestRenameCommandRequiresArgs(t *testing.T) {
	cmd := NewRenameCommand(&bytes.Buffer{}, &bytes.Buffer{}, fixedFactory(&fakeCommandSession{}))
	err := cmd.Run([]string{"conv-1"})
	if err == nil || !strings.Contains(err.Error(), "requires") {
		t.Fatalf("expected argument validation error, got %v", err)
	}
}

func TestDeleteCommand(t *testing.T) {
	stdout := &bytes.Buffer{}
	fake := &fakeCommandSession{}
	cmd := NewDeleteCommand(stdout, &bytes.Buffer{}, fixedFactory(fake))

	if err := cmd.Run([]string{"conv-2"}); err != nil {
		t.Fatalf("expected delete to succeed, got err=%v", err)
	}
	if fake.deletedID != "conv-2" {
		t.Fatalf("unexpected deleted id: %q", fake.deletedID)
	}
	if got := stdout.String(); got != "ok\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}

	if err := cmd.Run(nil); err == nil {
		t.Fatal("expected an error without a conversation id")
	}
}

func TestTranscribeCommandPrintsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.wav")
	if err := os.WriteFile(path, []byte("wave"), 0o600); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	stdout := &bytes.Buffer{}
	fake := &fakeCommandSession{transcription: "buy milk"}
	cmd := NewTranscribeCommand(stdout, &bytes.Buffer{}, fixedFactory(fake))

	if err := cmd.Run([]string{path}); err != nil {
		t.Fatalf("expected transcribe to succeed, got err=%v", err)
	}
	if fake.audioName != "note.wav" || fake.audioBytes != 4 {
		t.Fatalf("unexpected audio call: name=%q bytes=%d", fake.audioName, fake.audioBytes)
	}
	if got := stdout.String(); got != "buy milk\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestTranscribeCommandRequiresPath(t *testing.T) {
	cmd := NewTranscribeCommand(&bytes.Buffer{}, &bytes.Buffer{}, fixedFactory(&fakeCommandSession{}))
	err := cmd.Run(nil)
	if err == nil || !strings.Contains(err.Error(), "audio file path") {
		t.Fatalf("expected path validation error, got %v", err)
	}
}

func TestLoginCommandWritesTokenArg(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	stdout := &bytes.Buffer{}
	cmd := NewLoginCommand(strings.NewReader(""), stdout, &bytes.Buffer{})

	if err := cmd.Run([]string{"tok-abc"}); err != nil {
		t.Fatalf("expected login to succeed, got err=%v", err)
	}
	token, err := config.ReadToken()
	if err != nil {
		t.Fatalf("ReadToken: %v", err)
	}
	if token != "tok-abc" {
		t.Fatalf("unexpected token: %q", token)
	}
	if got := stdout.String(); got != "token saved\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestLoginCommandReadsStdin(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	stderr := &bytes.Buffer{}
	cmd := NewLoginCommand(strings.NewReader("tok-stdin\n"), &bytes.Buffer{}, stderr)

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected login to succeed, got err=%v", err)
	}
	token, err := config.ReadToken()
	if err != nil {
		t.Fatalf("ReadToken: %v", err)
	}
	if token != "tok-stdin" {
		t.Fatalf("unexpected token: %q", token)
	}
	if !strings.Contains(stderr.String(), "token:") {
		t.Fatalf("expected prompt on stderr, got %q", stderr.String())
	}
}

func TestLoginCommandRequiresToken(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	cmd := NewLoginCommand(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})

	err := cmd.Run(nil)
	if err == nil || !strings.Contains(err.Error(), "token is required") {
		t.Fatalf("expected token validation error, got %v", err)
	}
}

func TestLogoutCommandRemovesToken(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	if err := config.WriteToken("tok-abc"); err != nil {
		t.Fatalf("WriteToken: %v", err)
	}
	stdout := &bytes.Buffer{}
	cmd := NewLogoutCommand(stdout, &bytes.Buffer{})

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected logout to succeed, got err=%v", err)
	}
	token, err := config.ReadToken()
	if err != nil {
		t.Fatalf("ReadToken: %v", err)
	}
	if token != "" {
		t.Fatalf("expected token removed, got %q", token)
	}
	if got := stdout.String(); got != "logged out\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestLogoutCommandPurgesState(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	if err := config.WriteToken("tok-abc"); err != nil {
		t.Fatalf("WriteToken: %v", err)
	}
	statePath, err := config.StatePath()
	if err != nil {
		t.Fatalf("StatePath: %v", err)
	}
	if err := os.WriteFile(statePath, []byte("{}"), 0o600); err != nil {
		t.Fatalf("write state: %v", err)
	}
	cmd := NewLogoutCommand(&bytes.Buffer{}, &bytes.Buffer{})

	if err := cmd.Run([]string{"-purge"}); err != nil {
		t.Fatalf("expected logout to succeed, got err=%v", err)
	}
	if _, err := os.Stat(statePath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected state file removed, got err=%v", err)
	}
}

func TestConfigCommandDefaultsJSON(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	stdout := &bytes.Buffer{}
	cmd := NewConfigCommand(stdout, &bytes.Buffer{})

	if err := cmd.Run([]string{"-default"}); err != nil {
		t.Fatalf("expected config to succeed, got err=%v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil {
		t.Fatalf("expected valid json output, got err=%v, raw=%q", err, stdout.String())
	}
	for _, key := range []string{"core_config_path", "ui_config_path", "backend", "logging", "storage", "history", "chat"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("expected %q in output, got %v", key, payload)
		}
	}
	backend, ok := payload["backend"].(map[string]any)
	if !ok || backend["base_url"] != "https://api.d23.ai" {
		t.Fatalf("unexpected backend section: %v", payload["backend"])
	}
}

func TestConfigCommandCoreScopeTOML(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	stdout := &bytes.Buffer{}
	cmd := NewConfigCommand(stdout, &bytes.Buffer{})

	if err := cmd.Run([]string{"-default", "-scope", "core", "-format", "toml"}); err != nil {
		t.Fatalf("expected config to succeed, got err=%v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "[backend]") || !strings.Contains(out, "api.d23.ai") {
		t.Fatalf("expected backend table in toml output, got %q", out)
	}
	if strings.Contains(out, "chat") {
		t.Fatalf("expected core-only output, got %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("expected trailing newline, got %q", out)
	}
}

func TestConfigCommandUIScope(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	stdout := &bytes.Buffer{}
	cmd := NewConfigCommand(stdout, &bytes.Buffer{})

	if err := cmd.Run([]string{"-default", "-scope", "ui"}); err != nil {
		t.Fatalf("expected config to succeed, got err=%v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil {
		t.Fatalf("expected valid json output, got err=%v", err)
	}
	if _, ok := payload["chat"]; !ok {
		t.Fatalf("expected chat section, got %v", payload)
	}
	if _, ok := payload["backend"]; ok {
		t.Fatalf("expected no backend section in ui scope, got %v", payload)
	}
}

func TestConfigCommandRejectsBadFlags(t *testing.T) {
	cmd := NewConfigCommand(&bytes.Buffer{}, &bytes.Buffer{})
	if err := cmd.Run([]string{"-format", "yaml"}); err == nil || !strings.Contains(err.Error(), "invalid format") {
		t.Fatalf("expected format error, got %v", err)
	}
	if err := cmd.Run([]string{"-scope", "bogus"}); err == nil || !strings.Contains(err.Error(), "invalid scope") {
		t.Fatalf("expected scope error, got %v", err)
	}
}

func TestChatCommandRunsUI(t *testing.T) {
	fake := &fakeCommandSession{}
	opened := 0
	cmd := NewChatCommand(
		&bytes.Buffer{},
		fixedFactory(fake),
		func() (logging.Logger, func()) {
			opened++
			return logging.Nop(), func() {}
		},
	)

	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected chat to succeed, got err=%v", err)
	}
	if opened != 1 {
		t.Fatalf("expected logger opened once, got %d", opened)
	}
	if fake.runUICalls != 1 {
		t.Fatalf("expected ui run once, got %d", fake.runUICalls)
	}
	if fake.closeCalls != 1 {
		t.Fatalf("expected session closed once, got %d", fake.closeCalls)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout := &bytes.Buffer{}
	cmd := NewVersionCommand(stdout, "v-test")
	if err := cmd.Run(nil); err != nil {
		t.Fatalf("expected version to succeed, got err=%v", err)
	}
	if got := stdout.String(); got != "v-test\n" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

type fakeCommandSession struct {
	resolveErr   error
	resolveCalls int
	actor        types.Actor

	initialHistoryCalls int
	initialHistoryErr   error
	refreshCalls        int
	refreshErr          error

	selectedIDs []string
	selectErr   error

	sentTexts []string
	sendErr   error

	grantCalls     int
	grantLatitude  float64
	grantLongitude float64
	grantErr       error
	grantSnap      *chat.Snapshot

	newChatCalls int
	newChatErr   error

	imageSelections []string
	selectImageErr  error

	audioName      string
	audioMIME      string
	audioBytes     int
	transcription  string
	attachAudioErr error

	renamedID    string
	renamedTitle string
	renameErr    error

	deletedID string
	deleteErr error

	snap chat.Snapshot

	coordsLatitude  float64
	coordsLongitude float64
	coordsOK        bool

	runUICalls int
	runUIErr   error
	closeCalls int
}

func (f *fakeCommandSession) ResolveActor(context.Context) (types.Actor, error) {
	f.resolveCalls++
	return f.actor, f.resolveErr
}

func (f *fakeCommandSession) LoadInitialHistory(context.Context) error {
	f.initialHistoryCalls++
	return f.initialHistoryErr
}

func (f *fakeCommandSession) RefreshConversations(context.Context) error {
	f.refreshCalls++
	return f.refreshErr
}

func (f *fakeCommandSession) SelectConversation(_ context.Context, id string) error {
	f.selectedIDs = append(f.selectedIDs, id)
	return f.selectErr
}

func (f *fakeCommandSession) Send(_ context.Context, text string) error {
	f.sentTexts = append(f.sentTexts, text)
	return f.sendErr
}

func (f *fakeCommandSession) GrantLocation(_ context.Context, latitude, longitude float64) error {
	f.grantCalls++
	f.grantLatitude = latitude
	f.grantLongitude = longitude
	if f.grantErr != nil {
		return f.grantErr
	}
	if f.grantSnap != nil {
		f.snap = *f.grantSnap
	}
	return nil
}

func (f *fakeCommandSession) StartNewChat(context.Context) error {
	f.newChatCalls++
	return f.newChatErr
}

func (f *fakeCommandSession) SelectImage(name, mime string, data []byte) error {
	f.imageSelections = append(f.imageSelections, fmt.Sprintf("%s:%s:%d", name, mime, len(data)))
	return f.selectImageErr
}

func (f *fakeCommandSession) AttachAudio(_ context.Context, name, mime string, data []byte) (string, error) {
	f.audioName = name
	f.audioMIME = mime
	f.audioBytes = len(data)
	return f.transcription, f.attachAudioErr
}

func (f *fakeCommandSession) Rename(_ context.Context, id, title string) error {
	f.renamedID = id
	f.renamedTitle = title
	return f.renameErr
}

func (f *fakeCommandSession) Delete(_ context.Context, id string) error {
	f.deletedID = id
	return f.deleteErr
}

func (f *fakeCommandSession) Snapshot() chat.Snapshot {
	return f.snap
}

func (f *fakeCommandSession) Coordinates() (float64, float64, bool) {
	return f.coordsLatitude, f.coordsLongitude, f.coordsOK
}

func (f *fakeCommandSession) RunUI() error {
	f.runUICalls++
	return f.runUIErr
}

func (f *fakeCommandSession) Close() error {
	f.closeCalls++
	return nil
}

func fixedFactory(session commandSession) sessionFactory {
	return func(logging.Logger) (commandSession, error) {
		return session, nil
	}
}
