package main

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flushRecorder struct {
	mu    sync.Mutex
	calls []struct {
		cardID int64
		field  string
		value  string
	}
}

func (f *flushRecorder) flush(cardID int64, field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, struct {
		cardID int64
		field  string
		value  string
	}{cardID, field, value})
}

func (f *flushRecorder) snapshot() []struct {
	cardID int64
	field  string
	value  string
} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append(f.calls[:0:0], f.calls...)
}

func TestCoalescerCollapsesBurst(t *testing.T) {
	rec := &flushRecorder{}
	c := NewCoalescer(30*time.Millisecond, rec.flush)

	// a typing burst: every keystroke within the quiet window
	for i, v := range []string{"h", "he", "hel", "hell", "hello"} {
		assert.True(t, c.Offer(7, "title", v, int64(i+1)))
		time.Sleep(5 * time.Millisecond)
	}
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	calls := rec.snapshot()
	assert.Equal(t, int64(7), calls[0].cardID)
	assert.Equal(t, "title", calls[0].field)
	assert.Equal(t, "hello", calls[0].value)
}

func TestCoalescerRejectsStaleSeq(t *testing.T) {
	rec := &flushRecorder{}
	c := NewCoalescer(20*time.Millisecond, rec.flush)

	assert.True(t, c.Offer(1, "description", "newer", 5))
	assert.False(t, c.Offer(1, "description", "stale", 3), "lower seq must be dropped")
	assert.False(t, c.Offer(1, "description", "same", 5), "equal seq must be dropped")

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "newer", rec.snapshot()[0].value)
}

func TestCoalescerIndependentFields(t *testing.T) {
	rec := &flushRecorder{}
	c := NewCoalescer(20*time.Millisecond, rec.flush)

	assert.True(t, c.Offer(1, "title", "a", 1))
	assert.True(t, c.Offer(1, "brief", "b", 1))
	assert.True(t, c.Offer(2, "title", "c", 1))

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	got := map[string]string{}
	for _, call := range rec.snapshot() {
		got[fieldKey(call.cardID, call.field)] = call.value
	}
	assert.Equal(t, map[string]string{"1:title": "a", "1:brief": "b", "2:title": "c"}, got)
}

// A timer callback that lost the lock race against a fresh Offer must honor
// the pushed-out deadline instead of flushing the new value early.
func TestCoalescerFireHonorsResetDeadline(t *testing.T) {
	rec := &flushRecorder{}
	c := NewCoalescer(time.Hour, rec.flush)

	require.True(t, c.Offer(1, "description", "draft", 1))
	// stand in for the quiet timer firing while the deadline is still ahead
	c.fire(1, "description", fieldKey(1, "description"))
	assert.Empty(t, rec.snapshot(), "flush before the quiet window elapsed")

	c.FlushAll()
	calls := rec.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "draft", calls[0].value)
}

// Seq tokens stay rejected after a flush: a delayed stale write must not
// resurrect an overwritten value.
func TestCoalescerStaleSeqAfterFlush(t *testing.T) {
	rec := &flushRecorder{}
	c := NewCoalescer(time.Hour, rec.flush)

	require.True(t, c.Offer(1, "brief", "final", 8))
	c.FlushAll()
	assert.False(t, c.Offer(1, "brief", "late retry", 7))
	c.FlushAll()

	calls := rec.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "final", calls[0].value)
}

func TestCoalescerFlushAll(t *testing.T) {
	rec := &flushRecorder{}
	c := NewCoalescer(time.Hour, rec.flush) // never fires on its own

	require.True(t, c.Offer(3, "title", "draft", 1))
	require.True(t, c.Offer(4, "brief", "notes", 1))
	c.FlushAll()

	calls := rec.snapshot()
	require.Len(t, calls, 2)
	got := map[string]string{}
	for _, call := range calls {
		got[fieldKey(call.cardID, call.field)] = call.value
	}
	assert.Equal(t, map[string]string{"3:title": "draft", "4:brief": "notes"}, got)

	// nothing left pending
	c.FlushAll()
	assert.Len(t, rec.snapshot(), 2)
}
