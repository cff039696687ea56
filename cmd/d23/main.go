package main

import (
	"fmt"
	"os"
)

const usageText = `d23 is a terminal client for the D23 chat service.

Usage:
  d23 [command] [flags]

Running d23 with no command opens the chat UI.

Commands:
  chat        open the interactive chat UI
  send        send one message and print the reply
  sessions    list conversations
  history     print a conversation transcript
  new         start a new conversation
  rename      rename a conversation
  delete      delete a conversation
  transcribe  transcribe an audio file
  login       store an API token
  logout      remove the stored API token
  config      print configuration (effective or defaults)
  version     print build version
  help        show help

Flags:
  -h, --help   show help

Examples:
  d23 send "what's the weather like?"
  d23 send -conversation 1f3a -image photo.png "what is this?"
  d23 history -n 20
  d23 config -scope core -format toml
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]

	wiring := defaultCommandWiring(os.Stdin, os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	if len(args) == 0 {
		exitOnErr("chat", commands["chat"].Run(nil), wiring.stderr)
		return
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}
