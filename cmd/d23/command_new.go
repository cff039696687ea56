package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"d23/internal/logging"
)

type StartCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	newSession sessionFactory
}

func NewStartCommand(stdout, stderr io.Writer, newSession sessionFactory) *StartCommand {
	return &StartCommand{
		stdout:     stdout,
		stderr:     stderr,
		newSession: newSession,
	}
}

func (c *StartCommand) Run(args []string) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
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
	// The live anonymous transcript only reaches the past-session ring if
	// it is loaded before the switch.
	if err := session.LoadInitialHistory(ctx); err != nil {
		return err
	}
	if err := session.StartNewChat(ctx); err != nil {
		return err
	}

	snap := session.Snapshot()
	if snap.CurrentID == "" {
		fmt.Fprintln(c.stdout, "new conversation starts with the next send")
		return nil
	}
	fmt.Fprintln(c.stdout, snap.CurrentID)
	return nil
}
