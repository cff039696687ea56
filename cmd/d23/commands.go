package main

import (
	"io"
	"os"
)

type commandRunner interface {
	Run(args []string) error
}

type commandWiring struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	newSession sessionFactory
	openLogger loggerFactory
	version    string
}

func defaultCommandWiring(stdin io.Reader, stdout, stderr io.Writer) commandWiring {
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
		newSession: newChatSession,
		openLogger: openUILogger,
		version:    buildVersion(),
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"chat":       NewChatCommand(wiring.stderr, wiring.newSession, wiring.openLogger),
		"send":       NewSendCommand(wiring.stdout, wiring.stderr, wiring.newSession),
		"sessions":   NewSessionsCommand(wiring.stdout, wiring.stderr, wiring.newSession),
		"history":    NewHistoryCommand(wiring.stdout, wiring.stderr, wiring.newSession),
		"new":        NewStartCommand(wiring.stdout, wiring.stderr, wiring.newSession),
		"rename":     NewRenameCommand(wiring.stdout, wiring.stderr, wiring.newSession),
		"delete":     NewDeleteCommand(wiring.stdout, wiring.stderr, wiring.newSession),
		"transcribe": NewTranscribeCommand(wiring.stdout, wiring.stderr, wiring.newSession),
		"login":      NewLoginCommand(wiring.stdin, wiring.stdout, wiring.stderr),
		"logout":     NewLogoutCommand(wiring.stdout, wiring.stderr),
		"config":     NewConfigCommand(wiring.stdout, wiring.stderr),
		"version":    NewVersionCommand(wiring.stdout, wiring.version),
	}
}
