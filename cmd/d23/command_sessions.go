package main

import (
	"context"
	"flag"
	"io"

	"d23/internal/logging"
)

type SessionsCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	newSession sessionFactory
}

func NewSessionsCommand(stdout, stderr io.Writer, newSession sessionFactory) *SessionsCommand {
	return &SessionsCommand{
		stdout:     stdout,
		stderr:     stderr,
		newSession: newSession,
	}
}

func (c *SessionsCommand) Run(args []string) error {
	fs := flag.NewFlagSet("sessions", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	session, err := c.newSession(logging.Nop())
	if err != nil {
		return err
	}
	defer session.Close()

	if _, err := session.ResolveActor(ctx); err != nil {
		return err
	}
	// Anonymous listings are synthesized from the live transcript and the
	// past-session ring, so the transcript has to be in first.
	if err := session.LoadInitialHistory(ctx); err != nil {
		return err
	}
	if err := session.RefreshConversations(ctx); err != nil {
		return err
	}

	printConversations(c.stdout, session.Snapshot().Conversations)
	return nil
}
