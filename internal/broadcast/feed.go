// Package broadcast fans the latest game state out to any number of
// concurrent watchers without ever blocking the engine.
package broadcast

import (
	"sync"

	"itemrush/internal/game"
)

// Feed is a single-slot "latest value" publication point: one writer, many
// readers. Each subscriber holds a one-deep slot that Publish overwrites, so
// a slow reader skips intermediate states instead of backing up the engine.
// Readers always observe monotonically advancing turns within a game.
//
// Published snapshots share backing arrays between subscribers; a reader that
// wants to mutate one must work on a Clone.
type Feed struct {
	mu   sync.Mutex
	subs map[int]chan game.State
	next int
}

// NewFeed creates a feed with no subscribers.
func NewFeed() *Feed {
	return &Feed{subs: make(map[int]chan game.State)}
}

// Subscribe registers a new reader and returns its state channel along with a
// cancel function that must be called when the reader goes away.
func (f *Feed) Subscribe() (<-chan game.State, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	ch := make(chan game.State, 1)
	f.subs[id] = ch
	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
	return ch, cancel
}

// Publish replaces every subscriber's slot with the newest state. Never
// blocks: an unconsumed older state is discarded first (last-value-wins).
func (f *Feed) Publish(s game.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- s:
		default:
			// Slot still holds an unread state. Drop it and put ours in; the
			// subscriber only ever receives, so the slot cannot refill.
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}
