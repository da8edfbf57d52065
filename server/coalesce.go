package main

import (
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// autosaveQuiet is the quiet period for free-text fields: keystrokes within
// the window collapse into one store write carrying the final value.
// Discrete fields (dropdowns, checkboxes, dates) bypass the coalescer and
// write immediately.
const autosaveQuiet = 550 * time.Millisecond

// seqRetention bounds how long accepted seq tokens are remembered per
// (card, field) after the last offer.
const seqRetention = time.Hour

type flushFunc func(cardID int64, field, value string)

type pendingWrite struct {
	value    string
	seq      int64
	timer    *time.Timer
	deadline time.Time
}

// Coalescer batches rapid writes to the same (card, field) pair. A
// monotonic per-field seq token rejects flushes of values already
// superseded, so a slow earlier write can never clobber a later one.
type Coalescer struct {
	mu      sync.Mutex
	quiet   time.Duration
	flush   flushFunc
	pending map[string]*pendingWrite
	lastSeq *gocache.Cache
}

func NewCoalescer(quiet time.Duration, flush flushFunc) *Coalescer {
	return &Coalescer{
		quiet:   quiet,
		flush:   flush,
		pending: map[string]*pendingWrite{},
		lastSeq: gocache.New(seqRetention, seqRetention/2),
	}
}

func fieldKey(cardID int64, field string) string { return fmt.Sprintf("%d:%s", cardID, field) }

// Offer records a value for (cardID, field) and restarts the quiet timer.
// Values carrying a seq at or below one already accepted are stale and
// dropped; Offer reports whether the value was accepted.
func (c *Coalescer) Offer(cardID int64, field, value string, seq int64) bool {
	key := fieldKey(cardID, field)
	c.mu.Lock()
	defer c.mu.Unlock()
	if last, ok := c.lastSeq.Get(key); ok && seq <= last.(int64) {
		return false
	}
	c.lastSeq.Set(key, seq, gocache.DefaultExpiration)
	deadline := time.Now().Add(c.quiet)
	if p, ok := c.pending[key]; ok {
		p.value = value
		p.seq = seq
		p.deadline = deadline
		p.timer.Reset(c.quiet)
		return true
	}
	p := &pendingWrite{value: value, seq: seq, deadline: deadline}
	p.timer = time.AfterFunc(c.quiet, func() { c.fire(cardID, field, key) })
	c.pending[key] = p
	return true
}

func (c *Coalescer) fire(cardID int64, field, key string) {
	c.mu.Lock()
	p, ok := c.pending[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	// an Offer may have pushed the deadline out after this timer fired but
	// before we took the lock; the deadline is authoritative, not the timer
	if remain := time.Until(p.deadline); remain > 0 {
		p.timer.Reset(remain)
		c.mu.Unlock()
		return
	}
	delete(c.pending, key)
	value := p.value
	c.mu.Unlock()
	c.flush(cardID, field, value)
}

// FlushAll synchronously flushes every pending write; used on shutdown.
func (c *Coalescer) FlushAll() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.pending))
	type item struct {
		cardID int64
		field  string
		value  string
	}
	items := []item{}
	for key, p := range c.pending {
		p.timer.Stop()
		var cardID int64
		var field string
		if _, err := fmt.Sscanf(key, "%d:%s", &cardID, &field); err == nil {
			items = append(items, item{cardID, field, p.value})
		}
		keys = append(keys, key)
	}
	for _, k := range keys {
		delete(c.pending, k)
	}
	c.mu.Unlock()
	for _, it := range items {
		c.flush(it.cardID, it.field, it.value)
	}
}
