package app

import (
	"time"

	"d23/internal/types"
)

type tickMsg time.Time

type actorResolvedMsg struct {
	actor types.Actor
	err   error
}

type initialHistoryMsg struct {
	err error
}

type conversationsRefreshedMsg struct {
	err error
}

type conversationSelectedMsg struct {
	id  string
	err error
}

type sendFinishedMsg struct {
	seq int
	err error
}

type locationDecisionMsg struct {
	granted bool
	err     error
}

type regenerateFinishedMsg struct {
	err error
}

type olderPageMsg struct {
	err error
}

type newChatMsg struct {
	err error
}

type renameFinishedMsg struct {
	id  string
	err error
}

type deleteFinishedMsg struct {
	id  string
	err error
}

type imageAttachedMsg struct {
	name string
	err  error
}

type transcriptionMsg struct {
	text string
	err  error
}

type clipboardResultMsg struct {
	err error
}

type sidebarToggledMsg struct{}
