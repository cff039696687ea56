package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"strings"

	"d23/internal/logging"
)

type SendCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	newSession sessionFactory
}

func NewSendCommand(stdout, stderr io.Writer, newSession sessionFactory) *SendCommand {
	return &SendCommand{
		stdout:     stdout,
		stderr:     stderr,
		newSession: newSession,
	}
}

func (c *SendCommand) Run(args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	conversation := fs.String("conversation", "", "conversation or session id to send into")
	image := fs.String("image", "", "path of an image to attach")
	shareLocation := fs.Bool("share-location", false, "share configured coordinates if the assistant asks")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(text) == "" && *image == "" {
		return errors.New("send requires message text or -image")
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
	if err := session.RefreshConversations(ctx); err != nil {
		return err
	}
	if *conversation != "" {
		if err := session.SelectConversation(ctx, *conversation); err != nil {
			return err
		}
	}
	if *image != "" {
		name, mimeType, data, err := readMediaFile(*image)
		if err != nil {
			return err
		}
		if err := session.SelectImage(name, mimeType, data); err != nil {
			return err
		}
	}
	if err := session.Send(ctx, text); err != nil {
		return err
	}

	snap := session.Snapshot()
	if snap.AwaitingLocation {
		if !*shareLocation {
			return errors.New("the assistant asked for your location; rerun with -share-location or use the chat UI")
		}
		latitude, longitude, ok := session.Coordinates()
		if !ok {
			return errors.New("no coordinates configured; set [location] latitude and longitude in config.toml")
		}
		if err := session.GrantLocation(ctx, latitude, longitude); err != nil {
			return err
		}
		snap = session.Snapshot()
	}
	return printLastReply(c.stdout, snap.Messages)
}
