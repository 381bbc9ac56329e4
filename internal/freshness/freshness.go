// Package freshness broadcasts the "data last updated" timestamp
// across views. Any view can publish after a successful fetch and any
// view can subscribe, with no shared parent state between them.
package freshness

import (
	"sync"
	"time"

	"github.com/salesops/leadscope/internal/session"
)

// SlotKey is where the last-updated value lives in the session slot
// store, so a subscriber arriving after the publisher still sees it.
const SlotKey = "leadscore:lastUpdated"

// Bus is a behavior-subject style broadcaster: each Publish notifies
// current subscribers at most once, and a new subscriber immediately
// receives the last known value. Intermediate values are not replayed.
type Bus struct {
	mu    sync.Mutex
	slots *session.Slots
	subs  map[int]chan string
	next  int
}

// NewBus wires the broadcaster to the slot store it persists through.
func NewBus(slots *session.Slots) *Bus {
	return &Bus{slots: slots, subs: make(map[int]chan string)}
}

// Publish records ts (ISO-8601) in the slot and fans it out. A
// subscriber whose channel is full drops this update rather than
// blocking the publisher; it will catch up on the next one.
func (b *Bus) Publish(ts string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slots.Set(SlotKey, ts)
	for _, ch := range b.subs {
		select {
		case ch <- ts:
		default:
		}
	}
}

// PublishNow publishes the current time.
func (b *Bus) PublishNow() {
	b.Publish(time.Now().Format(time.RFC3339))
}

// Subscribe returns the last published value (empty if none yet), a
// channel of future updates, and a cancel func the view calls when it
// unmounts.
func (b *Bus) Subscribe() (last string, updates <-chan string, cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan string, 1)
	id := b.next
	b.next++
	b.subs[id] = ch
	last, _ = b.slots.Get(SlotKey)
	return last, ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
}

// Last returns the most recent published value without subscribing.
func (b *Bus) Last() string {
	v, _ := b.slots.Get(SlotKey)
	return v
}
