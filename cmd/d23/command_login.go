package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"d23/internal/config"
)

type LoginCommand struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func NewLoginCommand(stdin io.Reader, stdout, stderr io.Writer) *LoginCommand {
	return &LoginCommand{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
}

func (c *LoginCommand) Run(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	token := ""
	if fs.NArg() > 0 {
		token = fs.Arg(0)
	} else {
		fmt.Fprint(c.stderr, "token: ")
		line, err := bufio.NewReader(c.stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		token = line
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is required")
	}

	if err := config.WriteToken(token); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "token saved")
	return nil
}
