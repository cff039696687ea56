package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"d23/internal/logging"
)

type TranscribeCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	newSession sessionFactory
}

func NewTranscribeCommand(stdout, stderr io.Writer, newSession sessionFactory) *TranscribeCommand {
	return &TranscribeCommand{
		stdout:     stdout,
		stderr:     stderr,
		newSession: newSession,
	}
}

func (c *TranscribeCommand) Run(args []string) error {
	fs := flag.NewFlagSet("transcribe", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("transcribe requires an audio file path")
	}
	name, mimeType, data, err := readMediaFile(fs.Arg(0))
	if err != nil {
		return err
	}

	ctx := context.Background()
	session, err := c.newSession(logging.Nop())
	if err != nil {
		return err
	}
	defer session.Close()

	text, err := session.AttachAudio(ctx, name, mimeType, data)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, text)
	return nil
}
