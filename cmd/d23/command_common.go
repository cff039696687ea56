package main

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"text/tabwriter"

	"d23/internal/types"
)

const version = "dev"

func printConversations(output io.Writer, conversations []types.Conversation) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tTITLE\tMESSAGES\tLAST ACTIVITY")
	for _, conversation := range conversations {
		title := strings.TrimSpace(conversation.Title)
		if title == "" {
			title = types.DefaultTitle
		}
		last := "-"
		if !conversation.LastMessageAt.IsZero() {
			last = conversation.LastMessageAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(writer, "%s\t%s\t%d\t%s\n", conversation.ID, title, conversation.MessageCount, last)
	}
	_ = writer.Flush()
}

func printMessages(output io.Writer, messages []types.Message) {
	for _, msg := range messages {
		prefix := string(msg.Role)
		if !msg.CreatedAt.IsZero() {
			prefix = fmt.Sprintf("%s %s", msg.CreatedAt.Local().Format("2006-01-02 15:04"), msg.Role)
		}
		fmt.Fprintf(output, "%s: %s\n", prefix, msg.Content)
		if msg.MediaURL != "" {
			fmt.Fprintf(output, "  media: %s\n", msg.MediaURL)
		}
	}
}

// printLastReply writes the newest assistant message. A transcript whose
// newest reply is a rollback bubble surfaces as an error instead of output.
func printLastReply(output io.Writer, messages []types.Message) error {
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Role != types.RoleAssistant {
			continue
		}
		if msg.IsError() {
			return errors.New(strings.TrimPrefix(msg.Content, "Error: "))
		}
		fmt.Fprintln(output, msg.Content)
		return nil
	}
	return errors.New("no reply received")
}

func readMediaFile(path string) (name, mimeType string, data []byte, err error) {
	data, err = os.ReadFile(path)
	if err != nil {
		return "", "", nil, err
	}
	name = filepath.Base(path)
	mimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return name, mimeType, data, nil
}

type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		var revision string
		var modified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			}
		}
		if revision != "" {
			if modified == "true" {
				return revision + "-dirty"
			}
			return revision
		}
	}

	exe, err := os.Executable()
	if err == nil {
		file, err := os.Open(exe)
		if err == nil {
			defer file.Close()
			hasher := sha256.New()
			if _, err := io.Copy(hasher, file); err == nil {
				sum := hasher.Sum(nil)
				return fmt.Sprintf("bin-%x", sum[:6])
			}
		}
	}

	return version
}
