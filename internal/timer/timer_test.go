package timer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_TryStart(t *testing.T) {
	tm := New()

	started, since := tm.TryStart(100)
	assert.True(t, started)
	assert.Equal(t, int64(100), since)
	assert.True(t, tm.Running())

	started, since = tm.TryStart(200)
	assert.False(t, started)
	assert.Equal(t, int64(100), since)
	assert.Len(t, tm.Intervals(), 1)
}

func TestTimer_StopThenRestart(t *testing.T) {
	tm := New()
	tm.TryStart(100)

	closed, ok := tm.Stop(150)
	require.True(t, ok)
	assert.Equal(t, int64(150), closed.StoppedAt)
	assert.False(t, tm.Running())

	started, _ := tm.TryStart(300)
	assert.True(t, started)
	assert.Len(t, tm.Intervals(), 2)
}

func TestTimer_ConcurrentStart(t *testing.T) {
	tm := New()

	const n = 64
	var wg sync.WaitGroup
	results := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(at int64) {
			defer wg.Done()
			started, _ := tm.TryStart(at)
			results <- started
		}(int64(i))
	}
	wg.Wait()
	close(results)

	startedCount := 0
	for r := range results {
		if r {
			startedCount++
		}
	}
	assert.Equal(t, 1, startedCount)
	assert.Len(t, tm.Intervals(), 1)
}
