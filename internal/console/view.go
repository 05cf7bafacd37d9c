package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	inputInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	conversationStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("69"))

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true)

	botStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func (m *Model) chatView() string {
	width := max(m.Width, 40)

	var sb strings.Builder
	sb.WriteString(titleStyle.Width(width).Render("Sleep Bot"))
	sb.WriteString("\n\n")
	sb.WriteString(m.transcriptView(width))
	sb.WriteString("\n\n")
	sb.WriteString(m.inputView())
	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render("Tab: Switch field | Enter: Send | PgUp/PgDn: Scroll | /join <name>: New member | Esc: Quit"))
	return sb.String()
}

// transcriptView renders the newest lines that fit, shifted by the scroll offset.
func (m *Model) transcriptView(width int) string {
	// title, inputs, help and borders
	height := max(m.Height-12, 3)

	end := len(m.Transcript) - m.Scroll
	end = max(end, 0)
	start := max(end-height, 0)

	var lines []string
	for _, l := range m.Transcript[start:end] {
		lines = append(lines, m.formatLine(l))
	}
	if len(lines) == 0 {
		lines = append(lines, inputInactiveStyle.Render("No messages yet. Try /start, /stop or /stats."))
	}

	return boxStyle.Width(width - 2).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) formatLine(l Line) string {
	who := userStyle.Render(m.User)
	if l.FromBot {
		who = botStyle.Render("bot")
	}
	return fmt.Sprintf("%s %s %s: %s",
		timeStyle.Render(l.At.Format("15:04:05")),
		conversationStyle.Render("["+l.ConversationID+"]"),
		who,
		l.Text,
	)
}

func (m *Model) inputView() string {
	convLabel := m.fieldLabel(0, "Conversation: ")
	msgLabel := m.fieldLabel(1, "Message: ")

	convValue := m.Conversation
	if m.InputFocus == 0 {
		convValue = inputStyle.Render(convValue + "█")
	}
	msgValue := m.Message
	if m.InputFocus == 1 {
		msgValue = inputStyle.Render(msgValue + "█")
	}

	return fmt.Sprintf("%s%s\n%s%s", convLabel, convValue, msgLabel, msgValue)
}

func (m *Model) fieldLabel(field int, name string) string {
	if m.InputFocus == field {
		return inputStyle.Render("→ " + name)
	}
	return inputInactiveStyle.Render("  " + name)
}
