package console

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sleep_bot/internal/bot"
)

const defaultConversation = "local"

// MsgReply is a bot reply routed back into the UI.
type MsgReply struct {
	ConversationID string
	Text           string
}

// Line is one transcript entry.
type Line struct {
	ConversationID string
	FromBot        bool
	Text           string
	At             time.Time
}

// Model is a local chat window: one field selects the conversation, the other
// holds the message to send to it.
type Model struct {
	Conversation string
	Message      string
	User         string
	InputFocus   int
	Transcript   []Line
	Scroll       int
	Width        int
	Height       int

	updates chan<- bot.Update
	done    <-chan struct{}
	now     func() time.Time
}

func NewModel(user string, updates chan<- bot.Update, done <-chan struct{}) *Model {
	if user == "" {
		user = "you"
	}
	return &Model{
		Conversation: defaultConversation,
		User:         user,
		InputFocus:   1,
		Width:        80,
		Height:       24,
		updates:      updates,
		done:         done,
		now:          time.Now,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgReply:
		m.appendLine(Line{ConversationID: msg.ConversationID, FromBot: true, Text: msg.Text, At: m.now()})
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	return m.chatView()
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "shift+tab":
		m.InputFocus = 1 - m.InputFocus
	case "enter":
		if m.InputFocus == 0 {
			m.InputFocus = 1
			return m, nil
		}
		return m, m.submit()
	case "pgup":
		if m.Scroll < len(m.Transcript)-1 {
			m.Scroll++
		}
	case "pgdown":
		if m.Scroll > 0 {
			m.Scroll--
		}
	case "backspace":
		if m.InputFocus == 0 {
			m.Conversation = trimLastRune(m.Conversation)
		} else {
			m.Message = trimLastRune(m.Message)
		}
	default:
		runes := msg.Runes
		if msg.Type != tea.KeyRunes && msg.Type != tea.KeySpace {
			break
		}
		if msg.Type == tea.KeySpace {
			runes = []rune{' '}
		}
		if m.InputFocus == 0 {
			// conversation ids are single tokens
			if msg.Type != tea.KeySpace {
				m.Conversation += string(runes)
			}
		} else {
			m.Message += string(runes)
		}
	}
	return m, nil
}

// submit turns the message field into an update. "/join <name>" simulates a
// participant joining the conversation.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.Message)
	if text == "" {
		return nil
	}
	conversation := m.Conversation
	if conversation == "" {
		conversation = defaultConversation
		m.Conversation = conversation
	}
	m.Message = ""

	now := m.now()
	u := bot.Update{
		ConversationID: conversation,
		From:           m.User,
		Date:           now,
	}
	if name, ok := strings.CutPrefix(text, "/join "); ok {
		u.NewMembers = []string{strings.TrimSpace(name)}
	} else {
		u.Text = text
	}

	m.appendLine(Line{ConversationID: conversation, Text: text, At: now})

	updates, done := m.updates, m.done
	return func() tea.Msg {
		select {
		case updates <- u:
		case <-done:
		}
		return nil
	}
}

func (m *Model) appendLine(l Line) {
	m.Transcript = append(m.Transcript, l)
	m.Scroll = 0
}

func trimLastRune(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return string(runes[:len(runes)-1])
}
