package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleep_bot/internal/command"
	"sleep_bot/internal/registry"
)

type sent struct {
	conversation string
	text         string
}

type fakeTransport struct {
	updates chan Update

	mu      sync.Mutex
	sent    []sent
	sendErr error
}

func newFakeTransport(buffer int) *fakeTransport {
	return &fakeTransport{updates: make(chan Update, buffer)}
}

func (f *fakeTransport) Updates(ctx context.Context) <-chan Update {
	return f.updates
}

func (f *fakeTransport) Send(ctx context.Context, conversationID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{conversation: conversationID, text: text})
	return f.sendErr
}

func (f *fakeTransport) replies(conversation string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.sent {
		if s.conversation == conversation {
			out = append(out, s.text)
		}
	}
	return out
}

var night = time.Date(2025, 8, 30, 22, 0, 0, 0, time.UTC)

func TestDispatcher_Handle(t *testing.T) {
	d := NewDispatcher(command.New(registry.New()), WithBotName("bayunbot"))

	tests := []struct {
		name   string
		update Update
		want   []string
	}{
		{
			name:   "start",
			update: Update{ConversationID: "c", Text: "/start", Date: night},
			want:   []string{"Started at 2025-08-30 22:00:00 UTC"},
		},
		{
			name:   "start again",
			update: Update{ConversationID: "c", Text: "/start@bayunbot", Date: night.Add(time.Minute)},
			want:   []string{"Timer already started at 2025-08-30 22:00:00 UTC"},
		},
		{
			name:   "stop",
			update: Update{ConversationID: "c", Text: "/stop", Date: night.Add(8 * time.Hour)},
			want:   []string{"Ends at 2025-08-31 06:00:00 UTC"},
		},
		{
			name:   "stats",
			update: Update{ConversationID: "c", Text: "/stats"},
			want: []string{"📊 Current state:\n" +
				"Started at 2025-08-30 22:00:00 UTC, Stopped at 2025-08-31 06:00:00 UTC, Time spent 8:0 \n" +
				"\nTotal sleep 8:0"},
		},
		{
			name:   "plain text",
			update: Update{ConversationID: "c", Text: "zzz"},
			want:   nil,
		},
		{
			name:   "new members",
			update: Update{ConversationID: "c", NewMembers: []string{"Ada", "Linus"}},
			want:   []string{"👋 Welcome, Ada!", "👋 Welcome, Linus!"},
		},
		{
			name:   "help",
			update: Update{ConversationID: "c", Text: "/help"},
			want:   []string{HelpText()},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Handle(context.Background(), tt.update))
		})
	}
}

func TestDispatcher_HandleStampsMissingDate(t *testing.T) {
	d := NewDispatcher(command.New(registry.New()))
	d.now = func() time.Time { return night }

	assert.Equal(t, []string{"Started at 2025-08-30 22:00:00 UTC"}, d.Handle(context.Background(), Update{ConversationID: "c", Text: "/start"}))
}

func TestDispatcher_RunConcurrentStarts(t *testing.T) {
	reg := registry.New()
	d := NewDispatcher(command.New(reg), WithWorkers(8))

	const n = 50
	tr := newFakeTransport(n)
	for i := 0; i < n; i++ {
		tr.updates <- Update{ConversationID: "c", Text: "/start", Date: night.Add(time.Duration(i) * time.Second)}
	}
	close(tr.updates)

	require.NoError(t, d.Run(context.Background(), tr))

	replies := tr.replies("c")
	require.Len(t, replies, n)
	started := 0
	for _, r := range replies {
		if len(r) >= len("Started at") && r[:len("Started at")] == "Started at" {
			started++
		}
	}
	assert.Equal(t, 1, started)
	assert.Len(t, reg.Snapshot("c"), 1)
}

func TestDispatcher_RunManyConversations(t *testing.T) {
	reg := registry.New()
	d := NewDispatcher(command.New(reg))

	tr := newFakeTransport(100)
	for i := 0; i < 50; i++ {
		tr.updates <- Update{ConversationID: fmt.Sprintf("c%d", i), Text: "/start", Date: night}
	}
	close(tr.updates)

	require.NoError(t, d.Run(context.Background(), tr))
	assert.Equal(t, 50, reg.Len())
	for i := 0; i < 50; i++ {
		assert.True(t, reg.Running(registry.ConversationID(fmt.Sprintf("c%d", i))))
	}
}

func TestDispatcher_RunSendErrorDoesNotStop(t *testing.T) {
	d := NewDispatcher(command.New(registry.New()))

	tr := newFakeTransport(2)
	tr.sendErr = errors.New("network down")
	tr.updates <- Update{ConversationID: "c", Text: "/start", Date: night}
	tr.updates <- Update{ConversationID: "c", Text: "/stop", Date: night}
	close(tr.updates)

	require.NoError(t, d.Run(context.Background(), tr))
	assert.Len(t, tr.replies("c"), 2)
}

func TestDispatcher_RunStopsOnCancel(t *testing.T) {
	d := NewDispatcher(command.New(registry.New()))
	tr := newFakeTransport(0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, tr) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
