package bot

import (
	"context"
	"time"
)

// Update is one inbound event from a transport.
type Update struct {
	ID             string
	ConversationID string
	From           string
	Text           string
	Date           time.Time
	// NewMembers lists the display names of participants who just joined.
	NewMembers []string
}

// Transport delivers updates and carries replies back to conversations.
type Transport interface {
	Updates(ctx context.Context) <-chan Update
	Send(ctx context.Context, conversationID, text string) error
}
