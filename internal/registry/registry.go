// Package registry keeps the timer state of every conversation the bot has
// seen. Lookups of the conversation map are guarded by one RWMutex; state
// transitions lock only the entry of the conversation involved, so commands
// for different conversations never wait on each other.
package registry

import (
	"sync"

	"sleep_bot/internal/timelog"
	"sleep_bot/internal/timer"
)

// ConversationID is the opaque key a transport uses to address a chat.
type ConversationID string

type StartStatus int

const (
	Started StartStatus = iota
	AlreadyRunning
)

func (s StartStatus) String() string {
	switch s {
	case Started:
		return "started"
	case AlreadyRunning:
		return "already_running"
	}
	return "unknown"
}

// StartOutcome reports what TryStart did. StartedAt is the start of the
// interval now open, either the new one or the one that was already running.
type StartOutcome struct {
	Status    StartStatus
	StartedAt int64
}

// StopOutcome carries the interval Stop closed, if there was one.
type StopOutcome struct {
	Closed  timelog.Interval
	Stopped bool
}

type Registry struct {
	mu     sync.RWMutex
	timers map[ConversationID]*timer.Timer
}

func New() *Registry {
	return &Registry{
		timers: make(map[ConversationID]*timer.Timer),
	}
}

// TryStart opens an interval for the conversation unless one is already open.
func (r *Registry) TryStart(id ConversationID, at int64) StartOutcome {
	started, since := r.getOrCreate(id).TryStart(at)
	if !started {
		return StartOutcome{Status: AlreadyRunning, StartedAt: since}
	}
	return StartOutcome{Status: Started, StartedAt: since}
}

// Stop closes the conversation's open interval. Unknown or idle conversations
// are left alone.
func (r *Registry) Stop(id ConversationID, at int64) StopOutcome {
	t, ok := r.get(id)
	if !ok {
		return StopOutcome{}
	}
	closed, stopped := t.Stop(at)
	return StopOutcome{Closed: closed, Stopped: stopped}
}

// Snapshot returns a copy of the conversation's intervals, empty if unknown.
func (r *Registry) Snapshot(id ConversationID) []timelog.Interval {
	t, ok := r.get(id)
	if !ok {
		return []timelog.Interval{}
	}
	return t.Intervals()
}

func (r *Registry) Running(id ConversationID) bool {
	t, ok := r.get(id)
	return ok && t.Running()
}

// Len returns the number of conversations with state.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.timers)
}

func (r *Registry) get(id ConversationID) (*timer.Timer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.timers[id]
	return t, ok
}

func (r *Registry) getOrCreate(id ConversationID) *timer.Timer {
	if t, ok := r.get(id); ok {
		return t
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// another goroutine may have created it between the two locks
	if t, ok := r.timers[id]; ok {
		return t
	}
	t := timer.New()
	r.timers[id] = t
	return t
}
