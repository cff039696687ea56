package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"d23/internal/logging"
)

type DeleteCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	newSession sessionFactory
}

func NewDeleteCommand(stdout, stderr io.Writer, newSession sessionFactory) *DeleteCommand {
	return &DeleteCommand{
		stdout:     stdout,
		stderr:     stderr,
		newSession: newSession,
	}
}

func (c *DeleteCommand) Run(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("delete requires a conversation id")
	}
	id := fs.Arg(0)

	ctx := context.Background()
	session, err := c.newSession(logging.Nop())
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "ok")
	return nil
}
