package bot

import (
	"fmt"
	"strings"
)

type Command int

const (
	CommandNone Command = iota
	CommandHelp
	CommandStart
	CommandStop
	CommandStats
)

var commands = []struct {
	cmd         Command
	name        string
	description string
}{
	{CommandHelp, "help", "display this text."},
	{CommandStart, "start", "start the timer"},
	{CommandStop, "stop", "stop the timer"},
	{CommandStats, "stats", "show stats"},
}

func (c Command) String() string {
	for _, entry := range commands {
		if entry.cmd == c {
			return entry.name
		}
	}
	return "none"
}

// ParseCommand extracts the command from message text. Commands may carry a
// "@botName" suffix; one addressed to a different bot is ignored. Arguments
// after the command are accepted and returned but carry no meaning.
func ParseCommand(text, botName string) (Command, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return CommandNone, ""
	}

	head, args, _ := strings.Cut(text[1:], " ")
	name, target, addressed := strings.Cut(head, "@")
	if addressed && botName != "" && !strings.EqualFold(target, botName) {
		return CommandNone, ""
	}

	name = strings.ToLower(name)
	for _, entry := range commands {
		if entry.name == name {
			return entry.cmd, strings.TrimSpace(args)
		}
	}
	return CommandNone, ""
}

// HelpText lists the supported commands.
func HelpText() string {
	var sb strings.Builder
	sb.WriteString("These commands are supported:")
	for _, entry := range commands {
		fmt.Fprintf(&sb, "\n/%s — %s", entry.name, entry.description)
	}
	return sb.String()
}

// Greeting is sent for every participant joining a conversation.
func Greeting(name string) string {
	return fmt.Sprintf("👋 Welcome, %s!", name)
}
