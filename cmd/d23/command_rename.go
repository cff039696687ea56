package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"d23/internal/logging"
)

type RenameCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	newSession sessionFactory
}

func NewRenameCommand(stdout, stderr io.Writer, newSession sessionFactory) *RenameCommand {
	return &RenameCommand{
		stdout:     stdout,
		stderr:     stderr,
		newSession: newSession,
	}
}

func (c *RenameCommand) Run(args []string) error {
	fs := flag.NewFlagSet("rename", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("rename requires a conversation id and a title")
	}
	id := fs.Arg(0)
	title := strings.Join(fs.Args()[1:], " ")

	ctx := context.Background()
	session, err := c.newSession(logging.Nop())
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.Rename(ctx, id, title); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "ok")
	return nil
}
