// Package console provides local transports for talking to the bot without a
// chat network: an interactive terminal UI and a line-oriented stream.
package console

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"sleep_bot/internal/bot"
)

// TUI runs Model as a bubbletea program and exposes it as a bot.Transport.
type TUI struct {
	updates chan bot.Update
	done    chan struct{}
	program *tea.Program
}

func NewTUI(user string, opts ...tea.ProgramOption) *TUI {
	t := &TUI{
		updates: make(chan bot.Update),
		done:    make(chan struct{}),
	}
	t.program = tea.NewProgram(NewModel(user, t.updates, t.done), opts...)
	return t
}

// Updates never closes; the dispatcher stops on context cancellation once
// Run has returned.
func (t *TUI) Updates(ctx context.Context) <-chan bot.Update {
	return t.updates
}

func (t *TUI) Send(ctx context.Context, conversationID, text string) error {
	select {
	case <-t.done:
		return fmt.Errorf("send to %s: console closed", conversationID)
	default:
	}
	t.program.Send(MsgReply{ConversationID: conversationID, Text: text})
	return nil
}

// Run blocks until the user quits the UI.
func (t *TUI) Run() error {
	defer close(t.done)
	if _, err := t.program.Run(); err != nil {
		return fmt.Errorf("run console: %w", err)
	}
	return nil
}

// Quit asks the running program to exit.
func (t *TUI) Quit() {
	t.program.Quit()
}
