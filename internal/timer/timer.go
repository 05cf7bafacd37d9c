package timer

import (
	"sync"

	"sleep_bot/internal/timelog"
)

// Timer holds the sleep log of one conversation. The running state is read
// off the log itself so the two can never disagree.
type Timer struct {
	mu  sync.Mutex
	log timelog.Log
}

func New() *Timer {
	return &Timer{}
}

// TryStart opens a new interval at the given instant unless one is already
// open. When it refuses, since is the start of the interval still running.
func (t *Timer) TryStart(at int64) (started bool, since int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.log.Running() {
		last, _ := t.log.Last()
		return false, last.StartedAt
	}

	t.log.Start(at)
	last, _ := t.log.Last()
	return true, last.StartedAt
}

// Stop closes the open interval, if any.
func (t *Timer) Stop(at int64) (timelog.Interval, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.log.Stop(at)
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.log.Running()
}

func (t *Timer) Intervals() []timelog.Interval {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.log.Snapshot()
}
