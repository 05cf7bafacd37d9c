package timelog

// Interval is one recorded sleep session. Instants are epoch milliseconds, UTC.
type Interval struct {
	StartedAt int64
	StoppedAt int64
	Stopped   bool
}

func (i Interval) Open() bool {
	return !i.Stopped
}

// Elapsed is the length of a closed interval in milliseconds, zero for an
// open one.
func (i Interval) Elapsed() int64 {
	if !i.Stopped {
		return 0
	}
	return i.StoppedAt - i.StartedAt
}

// Log is the ordered interval history of a single conversation.
// Only the last interval may be open. Log is not safe for concurrent use.
type Log struct {
	intervals []Interval
}

// Start appends a new open interval. It reports false and leaves the log
// untouched when the last interval is still open. A start instant earlier
// than the previous stop is moved up to it so intervals never overlap.
func (l *Log) Start(at int64) bool {
	if l.Running() {
		return false
	}
	if last, ok := l.Last(); ok && at < last.StoppedAt {
		at = last.StoppedAt
	}
	l.intervals = append(l.intervals, Interval{StartedAt: at})
	return true
}

// Stop closes the trailing open interval and returns it.
func (l *Log) Stop(at int64) (Interval, bool) {
	if !l.Running() {
		return Interval{}, false
	}
	last := &l.intervals[len(l.intervals)-1]
	// clock skew between messages must not produce a negative interval
	if at < last.StartedAt {
		at = last.StartedAt
	}
	last.StoppedAt = at
	last.Stopped = true
	return *last, true
}

func (l *Log) Running() bool {
	n := len(l.intervals)
	return n > 0 && l.intervals[n-1].Open()
}

func (l *Log) Last() (Interval, bool) {
	if len(l.intervals) == 0 {
		return Interval{}, false
	}
	return l.intervals[len(l.intervals)-1], true
}

func (l *Log) Len() int {
	return len(l.intervals)
}

// Snapshot returns a copy of the intervals that the caller may keep.
func (l *Log) Snapshot() []Interval {
	out := make([]Interval, len(l.intervals))
	copy(out, l.intervals)
	return out
}

// Total sums the elapsed milliseconds of every closed interval.
func Total(intervals []Interval) int64 {
	var total int64
	for _, i := range intervals {
		total += i.Elapsed()
	}
	return total
}
