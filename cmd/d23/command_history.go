package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"d23/internal/logging"
)

type HistoryCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	newSession sessionFactory
}

func NewHistoryCommand(stdout, stderr io.Writer, newSession sessionFactory) *HistoryCommand {
	return &HistoryCommand{
		stdout:     stdout,
		stderr:     stderr,
		newSession: newSession,
	}
}

func (c *HistoryCommand) Run(args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	limit := fs.Int("n", 0, "print only the newest N messages")
	if err := fs.Parse(args); err != nil {
		return err
	}
	target := ""
	if fs.NArg() > 0 {
		target = fs.Arg(0)
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
	if err := session.LoadInitialHistory(ctx); err != nil {
		return err
	}
	if target != "" {
		if err := session.SelectConversation(ctx, target); err != nil {
			return err
		}
	} else if err := session.RefreshConversations(ctx); err != nil {
		return err
	}

	messages := session.Snapshot().Messages
	if *limit > 0 && len(messages) > *limit {
		messages = messages[len(messages)-*limit:]
	}
	if len(messages) == 0 {
		fmt.Fprintln(c.stdout, "no messages")
		return nil
	}
	printMessages(c.stdout, messages)
	return nil
}
