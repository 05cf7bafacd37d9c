package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sleep_bot/internal/command"
	"sleep_bot/internal/registry"
)

// DefaultWorkers bounds how many updates are processed at once.
const DefaultWorkers = 16

// Dispatcher routes updates to the command handlers. Updates are processed
// concurrently with no per-conversation ordering.
type Dispatcher struct {
	handlers *command.Handlers
	botName  string
	workers  int
	logger   *slog.Logger
	now      func() time.Time
}

type DispatcherOption func(*Dispatcher)

func WithBotName(name string) DispatcherOption {
	return func(d *Dispatcher) {
		d.botName = name
	}
}

func WithWorkers(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

func NewDispatcher(h *command.Handlers, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		handlers: h,
		workers:  DefaultWorkers,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run consumes updates from t until the channel closes or ctx is done.
// In-flight updates are finished before Run returns.
func (d *Dispatcher) Run(ctx context.Context, t Transport) error {
	var g errgroup.Group
	g.SetLimit(d.workers)

	updates := t.Updates(ctx)
	for {
		select {
		case <-ctx.Done():
			_ = g.Wait()
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return g.Wait()
			}
			g.Go(func() error {
				d.deliver(ctx, t, u)
				return nil
			})
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, t Transport, u Update) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	logger := d.logger.With("update", u.ID, "conversation", u.ConversationID)

	for _, reply := range d.Handle(ctx, u) {
		if err := t.Send(ctx, u.ConversationID, reply); err != nil {
			logger.Error("failed to send reply", "error", err)
		}
	}
}

// Handle computes the replies for a single update.
func (d *Dispatcher) Handle(ctx context.Context, u Update) []string {
	var replies []string
	for _, name := range u.NewMembers {
		replies = append(replies, Greeting(name))
	}

	cmd, _ := ParseCommand(u.Text, d.botName)
	if cmd == CommandNone {
		return replies
	}
	d.logger.Info("command received", "update", u.ID, "conversation", u.ConversationID, "command", cmd, "from", u.From)

	date := u.Date
	if date.IsZero() {
		date = d.now()
	}
	id := registry.ConversationID(u.ConversationID)

	switch cmd {
	case CommandHelp:
		replies = append(replies, HelpText())
	case CommandStart:
		replies = append(replies, d.handlers.Start(id, date.UnixMilli()))
	case CommandStop:
		replies = append(replies, d.handlers.Stop(ctx, id, date.UnixMilli()))
	case CommandStats:
		replies = append(replies, d.handlers.Stats(id))
	}
	return replies
}
