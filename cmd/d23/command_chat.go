package main

import (
	"flag"
	"io"

	"d23/internal/config"
	"d23/internal/logging"
)

type loggerFactory func() (logging.Logger, func())

type ChatCommand struct {
	stderr     io.Writer
	newSession sessionFactory
	openLogger loggerFactory
}

func NewChatCommand(stderr io.Writer, newSession sessionFactory, openLogger loggerFactory) *ChatCommand {
	return &ChatCommand{
		stderr:     stderr,
		newSession: newSession,
		openLogger: openLogger,
	}
}

func (c *ChatCommand) Run(args []string) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logging.Nop()
	if c.openLogger != nil {
		logger, closeLogger := c.openLogger()
		defer closeLogger()
		log = logger
	}

	session, err := c.newSession(log)
	if err != nil {
		return err
	}
	defer session.Close()
	return session.RunUI()
}

// openUILogger routes logs to the data-dir log file. The UI owns the
// terminal, so failures degrade to a no-op logger rather than stderr noise.
func openUILogger() (logging.Logger, func()) {
	noop := func() {}
	path, err := config.UILogPath()
	if err != nil {
		return logging.Nop(), noop
	}
	file, err := logging.OpenLogFile(path)
	if err != nil {
		return logging.Nop(), noop
	}
	level := logging.Info
	if cfg, err := config.LoadCoreConfig(); err == nil {
		level = logging.ParseLevel(cfg.LogLevel())
	}
	return logging.New(file, level), func() { _ = file.Close() }
}
