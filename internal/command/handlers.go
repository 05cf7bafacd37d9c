// Package command turns Start, Stop and Stats requests into registry
// transitions and the text replied to the conversation.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sleep_bot/internal/registry"
	"sleep_bot/internal/timelog"
)

// Recorder receives every interval closed by Stop.
type Recorder interface {
	Record(ctx context.Context, conversationID string, interval timelog.Interval) error
}

type Handlers struct {
	registry *registry.Registry
	recorder Recorder
	logger   *slog.Logger
}

type Option func(*Handlers)

// WithRecorder hands closed intervals to r. Recorder errors are logged only.
func WithRecorder(r Recorder) Option {
	return func(h *Handlers) {
		h.recorder = r
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handlers) {
		h.logger = l
	}
}

func New(reg *registry.Registry, opts ...Option) *Handlers {
	h := &Handlers{
		registry: reg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handlers) Start(id registry.ConversationID, at int64) string {
	out := h.registry.TryStart(id, at)
	h.logger.Debug("start", "conversation", id, "status", out.Status, "started_at", out.StartedAt)

	if out.Status == registry.AlreadyRunning {
		return fmt.Sprintf("Timer already started at %s", FormatInstant(out.StartedAt))
	}
	return fmt.Sprintf("Started at %s", FormatInstant(out.StartedAt))
}

// Stop always confirms, whether or not an interval was open. ctx only
// bounds the recorder call.
func (h *Handlers) Stop(ctx context.Context, id registry.ConversationID, at int64) string {
	out := h.registry.Stop(id, at)
	h.logger.Debug("stop", "conversation", id, "closed", out.Stopped)

	if out.Stopped && h.recorder != nil {
		if err := h.recorder.Record(ctx, string(id), out.Closed); err != nil {
			h.logger.Error("failed to record interval", "conversation", id, "error", err)
		}
	}
	return fmt.Sprintf("Ends at %s", FormatInstant(at))
}

func (h *Handlers) Stats(id registry.ConversationID) string {
	return Report(h.registry.Snapshot(id))
}

// Report renders intervals the way Stats replies with them.
func Report(intervals []timelog.Interval) string {
	var sb strings.Builder
	sb.WriteString("📊 Current state:\n")

	for _, iv := range intervals {
		if iv.Open() {
			fmt.Fprintf(&sb, "Started at %s \n", FormatInstant(iv.StartedAt))
			continue
		}
		fmt.Fprintf(&sb, "Started at %s, Stopped at %s, Time spent %s \n",
			FormatInstant(iv.StartedAt),
			FormatInstant(iv.StoppedAt),
			FormatHoursMinutes(iv.Elapsed()),
		)
	}

	fmt.Fprintf(&sb, "\nTotal sleep %s", FormatHoursMinutes(timelog.Total(intervals)))
	return sb.String()
}

// FormatInstant renders epoch milliseconds as a UTC timestamp.
func FormatInstant(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05 UTC")
}

// FormatHoursMinutes renders a millisecond span as hours:minutes, truncating
// partial minutes.
func FormatHoursMinutes(ms int64) string {
	minutes := ms / 60_000
	return fmt.Sprintf("%d:%d", minutes/60, minutes%60)
}
