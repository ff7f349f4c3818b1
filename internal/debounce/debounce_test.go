package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
	done  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 16)}
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	r.calls = append(r.calls, v)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestTrigger_CoalescesCalls(t *testing.T) {
	rec := newRecorder()
	trigger := New(50*time.Millisecond, rec.record)

	trigger.Call("a")
	trigger.Call("b")
	trigger.Call("c")
	assert.True(t, trigger.Pending())

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never fired")
	}

	// Give a stale timer a chance to misfire
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"c"}, rec.snapshot())
	assert.False(t, trigger.Pending())
}

func TestTrigger_Flush(t *testing.T) {
	rec := newRecorder()
	trigger := New(time.Hour, rec.record)

	trigger.Flush()
	assert.Empty(t, rec.snapshot())

	trigger.Call("now")
	trigger.Flush()

	require.Equal(t, []string{"now"}, rec.snapshot())
	assert.False(t, trigger.Pending())

	trigger.Flush()
	assert.Len(t, rec.snapshot(), 1)
}

func TestTrigger_Cancel(t *testing.T) {
	rec := newRecorder()
	trigger := New(20*time.Millisecond, rec.record)

	trigger.Call("dropped")
	trigger.Cancel()

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
	assert.False(t, trigger.Pending())
}

func TestTrigger_NegativeWait(t *testing.T) {
	trigger := New(-time.Second, func(string) {})
	assert.Equal(t, time.Duration(0), trigger.Wait())
}
