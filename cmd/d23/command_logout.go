package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"d23/internal/config"
)

type LogoutCommand struct {
	stdout io.Writer
	stderr io.Writer
}

func NewLogoutCommand(stdout, stderr io.Writer) *LogoutCommand {
	return &LogoutCommand{
		stdout: stdout,
		stderr: stderr,
	}
}

func (c *LogoutCommand) Run(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	purge := fs.Bool("purge", false, "also remove cached state and the anonymous identity")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.RemoveToken(); err != nil {
		return err
	}
	if *purge {
		if err := removeLocalState(); err != nil {
			return err
		}
	}
	fmt.Fprintln(c.stdout, "logged out")
	return nil
}

func removeLocalState() error {
	for _, resolve := range []func() (string, error){
		config.StatePath,
		config.PastSessionsPath,
		config.DBPath,
	} {
		path, err := resolve()
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}
